package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
}

func (m *memCache) Get(_ context.Context, url string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	b, ok := m.entries[url]
	return b, ok, nil
}

func (m *memCache) Set(_ context.Context, url string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = map[string][]byte{}
	}
	m.entries[url] = body
	return nil
}

func TestFetcherGet(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	cache := &memCache{}
	f := NewFetcher(time.Second, nil, WithCache(cache))

	body, err := f.Get(context.Background(), srv.URL+"/feed")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))

	body, err = f.Get(context.Background(), srv.URL+"/feed")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.EqualValues(t, 1, hits.Load(), "second call is served from cache")
}

func TestFetcherNon2xxIsErrorAndNotCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	cache := &memCache{}
	f := NewFetcher(time.Second, nil, WithCache(cache))

	_, err := f.Get(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusNotFound, he.StatusCode)

	_, err = f.Get(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.EqualValues(t, 2, hits.Load(), "no retries, no caching of failures")
	assert.Empty(t, cache.entries)
}

func TestFetcherFallsThroughOnCacheError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	f := NewFetcher(time.Second, nil, WithCache(&memCache{getErr: errors.New("redis down")}))
	body, err := f.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(body))
}

func TestFetcherHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewFetcher(time.Second, nil).Get(ctx, srv.URL)
	require.Error(t, err)
}

func TestFetcherRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Query().Get("body")))
	}))
	defer srv.Close()

	cache := &memCache{}
	f := NewFetcher(time.Second, nil, WithCache(cache), WithMaxBodyBytes(8))

	body, err := f.Get(context.Background(), srv.URL+"?body=12345678")
	require.NoError(t, err)
	assert.Equal(t, "12345678", string(body))

	_, err = f.Get(context.Background(), srv.URL+"?body=123456789")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBodyTooLarge))
	assert.Len(t, cache.entries, 1, "truncated bodies are not cached")
}
