// Package hackatime provides a client for the Hackatime statistics API.
package hackatime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/j-veylop/hackdash/internal/logger"
	"github.com/j-veylop/hackdash/internal/models"
)

// DefaultBaseURL is the public Hackatime v1 API.
const DefaultBaseURL = "https://hackatime.hackclub.com/api/v1"

// maxResponseBytes bounds a stats response. Real ones are a few KiB.
const maxResponseBytes = 4 << 20

var (
	// ErrStatus is wrapped by StatusError.
	ErrStatus = errors.New("unexpected status")

	// ErrResponseTooLarge is returned when a response exceeds maxResponseBytes.
	ErrResponseTooLarge = errors.New("stats response too large")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("stats request failed (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("stats request failed (status %d): %s", e.StatusCode, e.Body)
}

// Unwrap lets errors.Is match ErrStatus.
func (e *StatusError) Unwrap() error {
	return ErrStatus
}

// TrustFactor is the account trust block returned next to the stats data.
type TrustFactor struct {
	TrustLevel string  `json:"trust_level"`
	TrustValue float64 `json:"trust_value"`
}

// Response is the stats envelope.
type Response struct {
	Data        models.StatsSummary `json:"data"`
	TrustFactor *TrustFactor        `json:"trust_factor,omitempty"`
}

// Config holds configuration for the client.
type Config struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	UserAgent  string
	Timeout    time.Duration
}

// Client fetches statistics from Hackatime.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
}

// New creates a new client.
func New(config Config) *Client {
	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = "hackdash"
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     config.APIKey,
		userAgent:  userAgent,
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// StatsURL builds the stats endpoint for a user. A nil range omits the date
// parameters, which asks for all-time totals.
func (c *Client) StatsURL(userID string, r *models.TimeRange) string {
	u := c.baseURL + "/users/" + url.PathEscape(userID) + "/stats"
	if r == nil {
		return u
	}
	q := url.Values{}
	q.Set("start_date", r.StartParam())
	q.Set("end_date", r.EndParam())
	return u + "?" + q.Encode()
}

// Stats fetches the full stats envelope for a user.
func (c *Client) Stats(ctx context.Context, userID string, r *models.TimeRange) (*Response, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.StatsURL(userID, r), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create stats request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stats request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read stats response: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, ErrResponseTooLarge
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	var statsResp Response
	if err := json.Unmarshal(body, &statsResp); err != nil {
		return nil, fmt.Errorf("failed to parse stats response: %w", err)
	}

	return &statsResp, nil
}

// Summary returns the data object of the stats envelope.
func (c *Client) Summary(ctx context.Context, userID string, r *models.TimeRange) (*models.StatsSummary, error) {
	resp, err := c.Stats(ctx, userID, r)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// RangeTotal returns the total coded seconds within r.
func (c *Client) RangeTotal(ctx context.Context, userID string, r models.TimeRange) (float64, error) {
	if !r.Valid() {
		return 0, fmt.Errorf("invalid range %s", r)
	}
	resp, err := c.Stats(ctx, userID, &r)
	if err != nil {
		return 0, err
	}
	return resp.Data.TotalSeconds, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	// Back up to a rune boundary.
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
