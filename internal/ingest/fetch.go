// Package ingest fetches the raw documents every game source is built on.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	DefaultTimeout   = 20 * time.Second
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	maxBodyBytes     = 32 << 20
)

// Getter returns the body of a URL.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Cache stores raw documents by URL.
type Cache interface {
	Get(ctx context.Context, url string) ([]byte, bool, error)
	Set(ctx context.Context, url string, body []byte) error
}

// HTTPError is a non-2xx response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
}

// ErrBodyTooLarge means a response exceeded the fetcher's body limit.
var ErrBodyTooLarge = errors.New("response body too large")

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.StatusCode == http.StatusNotFound
}

// Fetcher issues GET requests, consulting an optional cache first. Failed
// requests are not retried.
type Fetcher struct {
	client  *http.Client
	cache   Cache
	maxBody int64
	logger  *zap.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithCache enables the document cache.
func WithCache(c Cache) Option {
	return func(f *Fetcher) { f.cache = c }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithMaxBodyBytes caps the size of a response body.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) { f.maxBody = n }
}

// NewFetcher creates a fetcher with the given timeout.
func NewFetcher(timeout time.Duration, logger *zap.Logger, opts ...Option) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		MaxIdleConnsPerHost:   4,
	}

	f := &Fetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(base),
		},
		maxBody: maxBodyBytes,
		logger:  logger.Named("ingest.fetch"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get returns the body of url. Only successful responses are cached.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	if f.cache != nil {
		body, hit, err := f.cache.Get(ctx, url)
		if err != nil {
			f.logger.Warn("cache read failed", zap.String("url", url), zap.Error(err))
		} else if hit {
			f.logger.Debug("cache hit", zap.String("url", url))
			return body, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &HTTPError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", url)
	}
	if int64(len(body)) > f.maxBody {
		return nil, errors.Wrapf(ErrBodyTooLarge, "GET %s: over %d bytes", url, f.maxBody)
	}

	f.logger.Debug("fetched",
		zap.String("url", url),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))

	if f.cache != nil {
		if err := f.cache.Set(ctx, url, body); err != nil {
			f.logger.Warn("cache write failed", zap.String("url", url), zap.Error(err))
		}
	}
	return body, nil
}
