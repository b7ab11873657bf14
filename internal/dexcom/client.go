// Package dexcom fetches glucose readings from the Dexcom Share service.
package dexcom

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwulff/glucose-go/internal/bloodsugar"
	"github.com/jwulff/glucose-go/internal/logging"
)

// Dexcom Share API endpoints (US region)
const (
	DefaultBaseURL = "https://share2.dexcom.com/ShareWebServices/Services"
	AppID          = "d89443d2-327c-4a6f-89e5-496bbb0317db"
)

// Options configure a Client.
type Options struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// Client is an HTTP client for the Dexcom Share API.
type Client struct {
	opts       Options
	httpClient *http.Client
	logger     zerolog.Logger
	sessionID  string
}

// NewClient creates a new Dexcom API client.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	return &Client{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     logging.Component(logger, "dexcom"),
	}
}

// shareReading is a glucose reading as returned by Share.
type shareReading struct {
	WT    string // Timestamp like "Date(1234567890000)"
	ST    string // System time
	DT    string // Display time
	Value int    // Glucose in mg/dL
	Trend string // Trend direction
}

// post sends a JSON body and returns the response body. Non-200 responses
// are reported as *StatusError.
func (c *Client) post(ctx context.Context, endpoint string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

// StatusError is returned for non-200 responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// authenticate gets a session ID from Dexcom.
func (c *Client) authenticate(ctx context.Context) error {
	// Step 1: Get account ID
	data, err := c.post(ctx, c.opts.BaseURL+"/General/AuthenticatePublisherAccount", map[string]string{
		"accountName":   c.opts.Username,
		"password":      c.opts.Password,
		"applicationId": AppID,
	})
	if err != nil {
		return fmt.Errorf("auth failed: %w", err)
	}

	var accountID string
	if err := json.Unmarshal(data, &accountID); err != nil {
		return fmt.Errorf("failed to parse account ID: %w", err)
	}

	// Step 2: Get session ID
	data, err = c.post(ctx, c.opts.BaseURL+"/General/LoginPublisherAccountById", map[string]string{
		"accountId":     accountID,
		"password":      c.opts.Password,
		"applicationId": AppID,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := json.Unmarshal(data, &c.sessionID); err != nil {
		return fmt.Errorf("failed to parse session ID: %w", err)
	}

	c.logger.Debug().Msg("authenticated with Dexcom Share")
	return nil
}

// FetchReadings fetches up to maxCount readings from the last minutes,
// newest first. An expired session is renewed once.
func (c *Client) FetchReadings(ctx context.Context, maxCount, minutes int) ([]bloodsugar.Reading, error) {
	if c.sessionID == "" {
		if err := c.authenticate(ctx); err != nil {
			return nil, err
		}
	}

	raw, err := c.fetch(ctx, maxCount, minutes)
	if err != nil {
		var status *StatusError
		if !errors.As(err, &status) {
			return nil, err
		}
		c.logger.Info().Err(err).Msg("fetch rejected, re-authenticating")
		c.sessionID = ""
		if err := c.authenticate(ctx); err != nil {
			return nil, err
		}
		if raw, err = c.fetch(ctx, maxCount, minutes); err != nil {
			return nil, err
		}
	}

	readings := make([]bloodsugar.Reading, 0, len(raw))
	for _, r := range raw {
		ms := ParseTimestamp(r.WT)
		if ms == 0 {
			c.logger.Warn().Str("wt", r.WT).Msg("skipping reading with unparseable timestamp")
			continue
		}
		readings = append(readings, bloodsugar.Reading{
			Timestamp: time.UnixMilli(ms).UTC(),
			Value:     bloodsugar.Value(r.Value),
			Trend:     r.Trend,
		})
	}
	return readings, nil
}

func (c *Client) fetch(ctx context.Context, maxCount, minutes int) ([]shareReading, error) {
	query := url.Values{}
	query.Set("sessionId", c.sessionID)
	query.Set("minutes", strconv.Itoa(minutes))
	query.Set("maxCount", strconv.Itoa(maxCount))

	data, err := c.post(ctx, c.opts.BaseURL+"/Publisher/ReadPublisherLatestGlucoseValues?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("read readings: %w", err)
	}

	var readings []shareReading
	if err := json.Unmarshal(data, &readings); err != nil {
		return nil, fmt.Errorf("failed to parse readings: %w", err)
	}
	return readings, nil
}

var timestampPattern = regexp.MustCompile(`^Date\((\d+)(?:[+-]\d{4})?\)$`)

// ParseTimestamp parses a Dexcom timestamp "Date(1234567890000)" to Unix
// milliseconds. A trailing zone offset is ignored since the value is UTC.
// Invalid input yields 0.
func ParseTimestamp(wt string) int64 {
	matches := timestampPattern.FindStringSubmatch(wt)
	if len(matches) < 2 {
		return 0
	}
	ms, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0
	}
	return ms
}
