package jina

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ai-power-rankings/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string, mutate func(*Config)) *Client {
	cfg := Config{
		APIKey:     "test-key",
		BaseURL:    serverURL,
		Timeout:    time.Second,
		MaxRetries: DefaultMaxRetries,
		RetryDelay: time.Millisecond,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewClient(cfg, logger.NewNop())
}

func TestFetchArticle_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "json", r.Header.Get("X-Return-Format"))
		assert.True(t, strings.HasSuffix(r.URL.Path, "/https://www.example.com/post"))
		_, _ = w.Write([]byte(`{"data":{"title":"Cursor raises","content":"  Cursor raised $100 million  ","byline":"Jane","published_time":"2025-06-02T10:00:00Z","excerpt":"short"}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, nil)
	article, err := client.FetchArticle(context.Background(), "https://www.example.com/post")
	require.NoError(t, err)

	assert.Equal(t, "Cursor raises", article.Title)
	assert.Equal(t, "Cursor raised $100 million", article.Content)
	assert.Equal(t, "Jane", article.Author)
	assert.Equal(t, "2025-06-02", article.PublishedDate)
	assert.Equal(t, "short", article.Description)
	assert.Equal(t, "example.com", article.Source)
}

func TestFetchArticle_TruncatesContent(t *testing.T) {
	long := strings.Repeat("a", maxContentLength+500)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":"` + long + `"}`))
	}))
	defer srv.Close()

	article, err := newTestClient(srv.URL, nil).FetchArticle(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Len(t, article.Content, maxContentLength)
}

func TestFetchArticle_RetriesBlockedThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{"content":"ok"}`))
	}))
	defer srv.Close()

	article, err := newTestClient(srv.URL, nil).FetchArticle(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "ok", article.Content)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchArticle_BlockedAfterRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, nil).FetchArticle(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBlocked))
	assert.Contains(t, err.Error(), "failed to fetch article with jina reader")
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchArticle_OtherStatusNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, nil).FetchArticle(context.Background(), "https://example.com")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchArticle_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, func(c *Config) { c.Timeout = 20 * time.Millisecond })
	_, err := client.FetchArticle(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Contains(t, err.Error(), "after 20ms")
}

func TestFetchArticle_NotConfigured(t *testing.T) {
	client := newTestClient("http://unused", func(c *Config) { c.APIKey = "" })
	assert.False(t, client.IsAvailable())

	_, err := client.FetchArticle(context.Background(), "https://example.com")
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestFetchArticle_Cached(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"content":"cached"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, func(c *Config) { c.CacheTTL = time.Minute })
	for i := 0; i < 3; i++ {
		_, err := client.FetchArticle(context.Background(), "https://example.com/a")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, healthCheckURL))
		_, _ = w.Write([]byte(`{"content":"Example Domain"}`))
	}))
	defer srv.Close()

	assert.NoError(t, newTestClient(srv.URL, nil).HealthCheck(context.Background()))
}
