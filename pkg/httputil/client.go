package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/flowatlas/flowatlas/pkg/buildinfo"
	"github.com/flowatlas/flowatlas/pkg/cache"
	"github.com/flowatlas/flowatlas/pkg/errors"
	"github.com/flowatlas/flowatlas/pkg/observability"
)

// DefaultTimeout bounds a single request attempt.
const DefaultTimeout = 30 * time.Second

// MaxBodySize caps a fetched body.
const MaxBodySize = 256 << 20

// Client fetches URLs through a cache.
type Client struct {
	HTTP     *http.Client
	Cache    cache.Cache
	Keyer    cache.Keyer
	TTL      time.Duration
	Attempts int
	Delay    time.Duration
	Logger   *log.Logger

	// Refresh bypasses cached responses but still stores fresh ones.
	Refresh bool
}

// NewClient returns a client with default timeouts. A nil cache disables
// caching and a nil logger discards output.
func NewClient(c cache.Cache, logger *log.Logger) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{
		HTTP:     &http.Client{Timeout: DefaultTimeout},
		Cache:    c,
		Keyer:    cache.NewDefaultKeyer(),
		TTL:      cache.TTLHTTP,
		Attempts: 3,
		Delay:    time.Second,
		Logger:   logger,
	}
}

// Fetch returns the body of a GET request to rawURL.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := errors.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	key := c.Keyer.HTTPKey("fetch", rawURL)

	if !c.Refresh {
		if data, hit, err := c.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "http")
			c.Logger.Debug("fetch cache hit", "url", rawURL, "bytes", len(data))
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "http")
	}

	var body []byte
	err := Retry(ctx, c.Attempts, c.Delay, func() error {
		var err error
		body, err = c.get(ctx, rawURL)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "fetch %s", rawURL)
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", rawURL)
	}

	if err := c.Cache.Set(ctx, key, body, c.TTL); err != nil {
		c.Logger.Warn("cache write failed", "url", rawURL, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "http", len(body))
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, u.Host, u.Path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "flowatlas/"+buildinfo.Version)

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, u.Host, u.Path, err)
		return nil, &RetryableError{Err: err}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, http.MethodGet, u.Host, u.Path, resp.StatusCode, time.Since(start))
	c.Logger.Debug("fetched", "url", rawURL, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{Err: fmt.Errorf("GET %s: %s", rawURL, resp.Status)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", rawURL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, &RetryableError{Err: err}
	}
	if len(data) > MaxBodySize {
		return nil, fmt.Errorf("GET %s: body exceeds %d bytes", rawURL, MaxBodySize)
	}
	return data, nil
}
