package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultTimeout = 60 * time.Second
	userAgent      = "rymtag/1.0"
)

// Sentinel errors for catalog fetch operations.
var (
	ErrNoURL       = errors.New("catalog: no URL configured")
	ErrNotFound    = errors.New("catalog: not found")
	ErrRateLimited = errors.New("catalog: rate limited by server")
	ErrServer      = errors.New("catalog: server error")
)

// Client fetches the full catalog document over HTTP.
type Client struct {
	http   *http.Client
	url    string
	logger *slog.Logger
}

// NewClient creates a catalog client for the given document URL. The URL may be
// empty; Fetch then fails with ErrNoURL and callers degrade to cache or empty
// data.
func NewClient(url string, logger *slog.Logger) *Client {
	return &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		url:    url,
		logger: logger,
	}
}

// Fetch downloads and decodes the full catalog document.
func (c *Client) Fetch(ctx context.Context) (Catalog, error) {
	if c.url == "" {
		return nil, ErrNoURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("fetching catalog", "url", c.url)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// Decoded below.
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, ErrServer
	default:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var cat Catalog
	if err := json.Unmarshal(body, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c.logger.Info("fetched catalog",
		"artists", len(cat),
		"releases", cat.Releases(),
		"bytes", len(body),
		"took", time.Since(start).Round(time.Millisecond),
	)
	return cat, nil
}
