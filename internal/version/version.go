// Package version holds the build metadata of the glucose binary, set with
// -ldflags "-X github.com/jwulff/glucose-go/internal/version.Version=...".
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Short is the one-line form used by `glucose --version`.
func Short() string {
	return fmt.Sprintf("%s (%s)", Version, Commit)
}

// Details lists the build metadata one field per line.
func Details() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s\ngo: %s\n", Version, Commit, BuildDate, runtime.Version())
}
