// Package sitepreview fetches a tool's website and extracts preview metadata
// (title, description, OpenGraph tags) for listing enrichment.
package sitepreview

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tooldexapp/tooldex-server/internal/ratelimit"
)

const (
	// Rate limit: 1 request per second per host, burst of 3
	defaultRPS   = 1.0
	defaultBurst = 3

	defaultTimeout      = 10 * time.Second
	defaultMaxBody      = 2 * 1024 * 1024
	previewMaxRedirects = 5
)

// Preview holds metadata extracted from a web page.
type Preview struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitzero"`
	SiteName    string `json:"site_name,omitzero"`
	ImageURL    string `json:"image_url,omitzero"`
	IconURL     string `json:"icon_url,omitzero"`
}

// Client is a rate-limited page fetcher.
type Client struct {
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
	maxBody int64
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides the default fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithMaxBody overrides the default response body cap.
func WithMaxBody(n int64) Option {
	return func(c *Client) {
		c.maxBody = n
	}
}

// New creates a new site preview client.
func New(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= previewMaxRedirects {
					return fmt.Errorf("stopped after %d redirects", previewMaxRedirects)
				}
				return nil
			},
		},
		limiter: ratelimit.New(defaultRPS, defaultBurst),
		logger:  logger,
		maxBody: defaultMaxBody,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// Fetch downloads the page at rawURL and extracts preview metadata.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Preview, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, wrapError("fetch", rawURL, ErrInvalidURL)
	}

	body, err := c.doRequest(ctx, u)
	if err != nil {
		return nil, wrapError("fetch", rawURL, err)
	}

	preview, err := extractPreview(u, body)
	if err != nil {
		return nil, wrapError("parse", rawURL, err)
	}

	return preview, nil
}

// doRequest executes an HTTP request with per-host rate limiting.
func (c *Client) doRequest(ctx context.Context, u *url.URL) ([]byte, error) {
	// Wait for rate limit
	if err := c.limiter.Wait(ctx, u.Host); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("User-Agent", "Tooldex/1.0")

	c.logger.Debug("site preview request",
		"host", u.Host,
		"path", u.Path,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	// Read body up to the cap; pages past that point rarely carry metadata.
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		if !isHTML(resp.Header.Get("Content-Type")) {
			return nil, ErrNotHTML
		}
		return body, nil
	case http.StatusNotFound, http.StatusGone:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusBadRequest:
		return nil, ErrBadRequest
	default:
		if resp.StatusCode >= 500 {
			return nil, ErrServer
		}
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

// isHTML reports whether a Content-Type header denotes an HTML document.
// An empty header is treated as HTML since many small sites omit it.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml" ||
		strings.HasSuffix(mediaType, "+html")
}
