package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSearXNG(t *testing.T) {
	t.Run("normalizes URL to end in /search", func(t *testing.T) {
		s, err := NewSearXNG("http://localhost:5555")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:5555/search", s.instanceURL)
	})

	t.Run("trailing slash", func(t *testing.T) {
		s, err := NewSearXNG("http://localhost:5555/")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:5555/search", s.instanceURL)
	})

	t.Run("already canonical", func(t *testing.T) {
		s, err := NewSearXNG("http://localhost:5555/search")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:5555/search", s.instanceURL)
	})

	t.Run("empty URL", func(t *testing.T) {
		_, err := NewSearXNG("")
		assert.ErrorIs(t, err, ErrMissingInstanceURL)
	})
}

func TestSearXNG_Search(t *testing.T) {
	t.Run("maps results to hits", func(t *testing.T) {
		var gotQuery, gotFormat, gotEngines, gotAPIKey string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("q")
			gotFormat = r.URL.Query().Get("format")
			gotEngines = r.URL.Query().Get("engines")
			gotAPIKey = r.Header.Get("X-API-Key")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"results": [
				{"title": "A", "url": "https://a.example", "content": "alpha", "publishedDate": "2024-03-01"},
				{"title": "B", "url": "https://b.example", "content": "beta", "publishedDate": ""}
			]}`))
		}))
		defer server.Close()

		s, err := NewSearXNG(server.URL, WithAPIKey("secret"))
		require.NoError(t, err)

		hits, err := s.Search(context.Background(), "test query", 5)
		require.NoError(t, err)

		assert.Equal(t, "test query", gotQuery)
		assert.Equal(t, "json", gotFormat)
		assert.Equal(t, "google,bing,duckduckgo", gotEngines)
		assert.Equal(t, "secret", gotAPIKey)

		require.Len(t, hits, 2)
		assert.Equal(t, "A", hits[0].Title)
		assert.Equal(t, "https://a.example", hits[0].URL)
		assert.Equal(t, "alpha", hits[0].Snippet)
		assert.Equal(t, "2024-03-01", hits[0].PublishedDate)
		assert.Empty(t, hits[1].PublishedDate)
	})

	t.Run("truncates to numResults", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"results": [
				{"title": "1", "url": "https://1.example"},
				{"title": "2", "url": "https://2.example"},
				{"title": "3", "url": "https://3.example"}
			]}`))
		}))
		defer server.Close()

		s, err := NewSearXNG(server.URL)
		require.NoError(t, err)

		hits, err := s.Search(context.Background(), "q", 2)
		require.NoError(t, err)
		assert.Len(t, hits, 2)
	})

	t.Run("no matches yields empty slice", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"results": []}`))
		}))
		defer server.Close()

		s, err := NewSearXNG(server.URL)
		require.NoError(t, err)

		hits, err := s.Search(context.Background(), "nothing matches this", 5)
		require.NoError(t, err)
		assert.NotNil(t, hits)
		assert.Empty(t, hits)
	})

	t.Run("empty query", func(t *testing.T) {
		s, err := NewSearXNG("http://localhost:5555")
		require.NoError(t, err)

		_, err = s.Search(context.Background(), "   ", 5)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		s, err := NewSearXNG(server.URL)
		require.NoError(t, err)

		_, err = s.Search(context.Background(), "q", 5)
		assert.Error(t, err)
	})
}
