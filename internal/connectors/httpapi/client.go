package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/tingbok/tingbok/internal/core/domain"
	"github.com/tingbok/tingbok/internal/logger"
)

const (
	// DefaultTimeout is the default per-attempt request timeout.
	DefaultTimeout = domain.DefaultUpstreamTimeout

	// DefaultMaxRetries is the default number of retries after the first attempt.
	DefaultMaxRetries = 3

	// DefaultInitialBackoff is the delay before the first retry.
	DefaultInitialBackoff = 500 * time.Millisecond

	// maxBodySize bounds how much of a response body is read.
	maxBodySize = 16 << 20
)

// Config configures a Client.
type Config struct {
	Source            domain.Source
	BaseURL           string
	SearchURL         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int
	UserAgent         string
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration

	// HTTPClient overrides the transport; nil uses a default client.
	HTTPClient *http.Client
}

// ConfigFromSettings builds a client configuration from source settings.
func ConfigFromSettings(source domain.Source, s domain.SourceSettings) Config {
	return Config{
		Source:            source,
		BaseURL:           s.BaseURL,
		SearchURL:         s.SearchURL,
		Timeout:           s.Timeout,
		RequestsPerSecond: s.RequestsPerSecond,
		Burst:             s.Burst,
		MaxRetries:        s.MaxRetries,
		UserAgent:         s.UserAgent,
	}
}

// Client performs throttled, retried JSON GETs against one upstream.
type Client struct {
	cfg         Config
	http        *http.Client
	rateLimiter *RateLimiter
}

// NewClient creates a new client. Zero-valued fields take defaults.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = domain.DefaultUserAgent
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 10 * cfg.InitialBackoff
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		cfg:         cfg,
		http:        httpClient,
		rateLimiter: NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}
}

// NewClients returns a data client and a search client. They are the same
// client unless cfg.SearchURL names another endpoint.
func NewClients(cfg Config) (data, search *Client) {
	data = NewClient(cfg)
	searchURL := strings.TrimRight(cfg.SearchURL, "/")
	if searchURL == "" || searchURL == data.BaseURL() {
		return data, data
	}
	cfg.BaseURL = searchURL
	return data, NewClient(cfg)
}

// Source returns the source this client talks to.
func (c *Client) Source() domain.Source {
	return c.cfg.Source
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// GetJSON fetches base+path?query and decodes the body into out.
// op and uri label errors and log lines.
func (c *Client) GetJSON(ctx context.Context, op, uri, path string, query url.Values, out any) error {
	endpoint := c.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	body, err := c.get(ctx, op, uri, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return c.upstreamError(op, uri, 0, fmt.Errorf("malformed JSON: %w", err))
	}
	return nil
}

// get runs the request with retries and returns a non-empty body.
func (c *Client) get(ctx context.Context, op, uri, endpoint string) ([]byte, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialBackoff
	b.MaxInterval = c.cfg.MaxBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0.2

	attempt := 0
	operation := func() ([]byte, error) {
		attempt++
		return c.attempt(ctx, op, uri, endpoint)
	}
	notify := func(err error, wait time.Duration) {
		logger.Debug("%s: %s %s attempt %d failed, retrying in %s: %v", c.cfg.Source, op, uri, attempt, wait, err)
	}

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(c.cfg.MaxRetries)+1),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify),
	)
	if err == nil {
		return body, nil
	}
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}

	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUpstream):
		return nil, err
	case ctx.Err() != nil:
		return nil, c.upstreamError(op, uri, 0, ctx.Err())
	default:
		return nil, c.upstreamError(op, uri, 0, err)
	}
}

// attempt performs one request. Errors that must not be retried are wrapped
// with backoff.Permanent.
func (c *Client) attempt(ctx context.Context, op, uri, endpoint string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, backoff.Permanent(c.upstreamError(op, uri, 0, fmt.Errorf("rate limit wait: %w", err)))
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(c.upstreamError(op, uri, 0, fmt.Errorf("building request: %w", err)))
	}
	req.Header.Set("Accept", "application/json, application/ld+json;q=0.9")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(c.upstreamError(op, uri, 0, ctx.Err()))
		}
		return nil, c.upstreamError(op, uri, 0, err)
	}
	defer resp.Body.Close()

	c.rateLimiter.UpdateFromResponse(resp)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.upstreamError(op, uri, resp.StatusCode, fmt.Errorf("reading body: %w", err))
	}

	switch code := resp.StatusCode; {
	case code == http.StatusNotFound || code == http.StatusGone:
		return nil, backoff.Permanent(fmt.Errorf("%w: %s %s", domain.ErrNotFound, c.cfg.Source, uri))
	case code == http.StatusTooManyRequests:
		return nil, c.upstreamError(op, uri, code, domain.ErrRateLimited)
	case code >= 500:
		return nil, c.upstreamError(op, uri, code, errors.New(http.StatusText(code)))
	case code < 200 || code >= 300:
		return nil, backoff.Permanent(c.upstreamError(op, uri, code, errors.New(http.StatusText(code))))
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, backoff.Permanent(fmt.Errorf("%w: %s %s: empty response", domain.ErrNotFound, c.cfg.Source, uri))
	}
	return body, nil
}

func (c *Client) upstreamError(op, uri string, status int, err error) *domain.UpstreamError {
	return &domain.UpstreamError{
		Source:     c.cfg.Source,
		Op:         op,
		URI:        uri,
		StatusCode: status,
		Err:        err,
	}
}
