package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// DefaultBaseURL is the public HN Firebase API.
	DefaultBaseURL = "https://hacker-news.firebaseio.com/v0"

	// DefaultMaxInFlight caps simultaneous HTTP requests per client.
	DefaultMaxInFlight = 10

	defaultUserAgent = "hnpeek/1.0"
	maxErrorBody     = 512
)

// Fetcher is the capability the resolvers need: GET a path relative to the
// API root and decode the JSON body into dst.
type Fetcher interface {
	FetchJSON(ctx context.Context, path string, dst any) error
}

// Client is the HN API client.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	sem       chan struct{}
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root (tests, mirrors).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMaxInFlight sets how many HTTP requests may be outstanding at once.
func WithMaxInFlight(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.sem = make(chan struct{}, n)
		}
	}
}

// NewClient creates a new HN API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{},
		baseURL:   DefaultBaseURL,
		userAgent: defaultUserAgent,
		sem:       make(chan struct{}, DefaultMaxInFlight),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// acquire blocks until an in-flight slot is free. The slot covers a single
// HTTP exchange only, so recursive callers can never starve each other.
func (c *Client) acquire(ctx context.Context) error {
	select {
	case c.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() { <-c.sem }

// FetchJSON issues one GET against baseURL/path and decodes the body into
// dst. There are no retries. Failures are *TransportError or *DecodeError.
func (c *Client) FetchJSON(ctx context.Context, path string, dst any) error {
	path = strings.TrimLeft(path, "/")
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}

	if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return &DecodeError{Path: path, Err: errNullBody}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &DecodeError{Path: path, Err: err}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}
	defer c.release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+path, nil)
	if err != nil {
		return nil, &TransportError{Path: path, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &TransportError{
			Path:       path,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(snippet))),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Path: path, Err: fmt.Errorf("reading body: %w", err)}
	}
	return body, nil
}

// Fetch is the typed form of Fetcher.FetchJSON.
func Fetch[T any](ctx context.Context, f Fetcher, path string) (T, error) {
	var v T
	if err := f.FetchJSON(ctx, path, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}
