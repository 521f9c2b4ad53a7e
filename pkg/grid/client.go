// Package grid provides a client for the shared grid collaborator: the
// current-value snapshot and the cell-edit interface.
package grid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the grid operations the reconciliation engine consumes.
type Client interface {
	// Snapshot fetches the current cell values and row metadata for a fund.
	Snapshot(ctx context.Context, fundID string) (*Snapshot, error)
	// ApplyCellUpdate persists a new value for one cell. A non-2xx grid
	// status is returned in the result, not as an error, so callers can
	// surface it verbatim.
	ApplyCellUpdate(ctx context.Context, fundID string, upd CellUpdate) (*ApplyResult, error)
}

// Snapshot is the grid's current state for one fund: a flat cellKey->value
// map plus per-row metadata.
type Snapshot struct {
	Cells map[string]any     `json:"cells"`
	Rows  map[string]RowMeta `json:"rows"`
}

// RowMeta describes one grid row (a portfolio company).
type RowMeta struct {
	Name  string `json:"name"`
	Stage string `json:"stage,omitempty"`
}

// Value returns the current value for a cell, keyed "row::column".
func (s *Snapshot) Value(cellKey string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.Cells[cellKey]
	return v, ok
}

// CellUpdate targets one cell with a new value.
type CellUpdate struct {
	RowID    string `json:"row_id"`
	ColumnID string `json:"column_id"`
	Value    any    `json:"value"`
}

// ApplyResult is the grid's verdict on a cell update.
type ApplyResult struct {
	OK     bool   `json:"ok"`
	Status string `json:"status"`
	Code   int    `json:"code"`
}

// Option configures the grid client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a grid client.
func NewClient(baseURL, apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(10), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo executes a request with exponential backoff on transient
// failures. GET requests retry; requests with a body are rebuilt from the
// provided payload.
func (c *httpClient) retryDo(ctx context.Context, build func() (*http.Request, error)) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 500 * time.Millisecond

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, err
		}

		req, err := build()
		if err != nil {
			return nil, 0, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "grid: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("grid: status %d: %s", resp.StatusCode, string(body))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

func (c *httpClient) Snapshot(ctx context.Context, fundID string) (*Snapshot, error) {
	reqURL := fmt.Sprintf("%s/funds/%s/snapshot", c.baseURL, fundID)

	body, statusCode, err := c.retryDo(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		return req, eris.Wrap(err, "grid: create snapshot request")
	})
	if err != nil {
		return nil, eris.Wrap(err, "grid: snapshot request failed")
	}
	if statusCode != http.StatusOK {
		return nil, eris.Errorf("grid: snapshot unexpected status %d: %s", statusCode, string(body))
	}

	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, eris.Wrap(err, "grid: unmarshal snapshot")
	}
	if snap.Cells == nil {
		snap.Cells = map[string]any{}
	}
	return &snap, nil
}

func (c *httpClient) ApplyCellUpdate(ctx context.Context, fundID string, upd CellUpdate) (*ApplyResult, error) {
	payload, err := json.Marshal(upd)
	if err != nil {
		return nil, eris.Wrap(err, "grid: marshal cell update")
	}
	reqURL := fmt.Sprintf("%s/funds/%s/cells", c.baseURL, fundID)

	body, statusCode, err := c.retryDo(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
		if err != nil {
			return nil, eris.Wrap(err, "grid: create update request")
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "grid: apply cell update failed")
	}

	result := &ApplyResult{
		OK:     statusCode >= 200 && statusCode < 300,
		Code:   statusCode,
		Status: http.StatusText(statusCode),
	}

	// The grid reports a structured status when it rejects an edit.
	var parsed struct {
		OK     bool   `json:"ok"`
		Status string `json:"status"`
	}
	if jsonErr := json.Unmarshal(body, &parsed); jsonErr == nil && parsed.Status != "" {
		result.Status = parsed.Status
		if result.OK {
			result.OK = parsed.OK
		}
	}
	return result, nil
}
