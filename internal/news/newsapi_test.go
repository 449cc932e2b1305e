package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/border_conflict_monitor/internal/apperrors"
)

func TestNewsAPIClient_Search_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "india pakistan conflict", r.URL.Query().Get("q"))
		assert.Equal(t, "en", r.URL.Query().Get("language"))
		assert.Equal(t, "publishedAt", r.URL.Query().Get("sortBy"))
		assert.Equal(t, "3", r.URL.Query().Get("pageSize"))
		assert.Equal(t, "2025-05-03T12:00:00", r.URL.Query().Get("from"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"totalResults": 2,
			"articles": [
				{"source": {"id": null, "name": "Reuters"}, "title": "Shelling near border",
				 "description": "desc", "url": "https://example.com/a",
				 "publishedAt": "2025-05-09T10:00:00Z", "content": "body"},
				{"source": {"id": "x", "name": ""}, "title": "Second",
				 "url": "https://example.com/b", "publishedAt": "garbage"}
			]
		}`))
	}))
	defer server.Close()

	client := NewNewsAPIClient("secret", server.URL, 5*time.Second, 0)
	articles, err := client.Search(context.Background(), "india pakistan conflict", SearchOptions{
		Language: "en",
		PageSize: 3,
		Since:    time.Date(2025, 5, 3, 12, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "Reuters", articles[0].Source)
	assert.Equal(t, "Shelling near border", articles[0].Title)
	assert.Equal(t, "desc", articles[0].Description)
	assert.Equal(t, "body", articles[0].Content)
	assert.Equal(t, time.Date(2025, 5, 9, 10, 0, 0, 0, time.UTC), articles[0].PublishedAt)
	assert.Equal(t, "Unknown source", articles[1].Source)
	assert.True(t, articles[1].PublishedAt.IsZero())
}

func TestNewsAPIClient_Search_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"status":"error","code":"rateLimited","message":"too many requests"}`))
	}))
	defer server.Close()

	client := NewNewsAPIClient("secret", server.URL, 5*time.Second, 0)
	articles, err := client.Search(context.Background(), "q", SearchOptions{})

	require.Error(t, err)
	assert.Nil(t, articles)
	var transportErr *apperrors.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, apperrors.ServiceNewsAPI, transportErr.Service)
	assert.Contains(t, err.Error(), "rateLimited")
}

func TestNewsAPIClient_Search_InvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer server.Close()

	client := NewNewsAPIClient("secret", server.URL, 5*time.Second, 0)
	_, err := client.Search(context.Background(), "q", SearchOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestNewsAPIClient_Search_MissingKey(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewNewsAPIClient("", server.URL, 5*time.Second, 0)
	_, err := client.Search(context.Background(), "q", SearchOptions{})

	require.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
	assert.EqualError(t, err, "newsapi key missing")
	assert.False(t, called, "no network call without a key")
}
