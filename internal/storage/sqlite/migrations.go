package sqlite

// schema contains the database schema DDL. Times are unix milliseconds.
const schema = `
-- Glucose readings, one per sensor timestamp
CREATE TABLE IF NOT EXISTS readings (
    timestamp_ms INTEGER PRIMARY KEY,
    value INTEGER NOT NULL CHECK (value >= 0),
    trend TEXT NOT NULL DEFAULT '',
    sync_id TEXT
);

-- Sync runs
CREATE TABLE IF NOT EXISTS sync_runs (
    id TEXT PRIMARY KEY,
    started_at INTEGER NOT NULL,
    finished_at INTEGER,
    fetched INTEGER DEFAULT 0,
    stored INTEGER DEFAULT 0,
    last_error TEXT DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_sync_runs_started ON sync_runs(started_at);

-- Configuration
CREATE TABLE IF NOT EXISTS config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);
`
