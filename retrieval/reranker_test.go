package retrieval

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPReranker_Score(t *testing.T) {
	ctx := context.Background()

	t.Run("scores restored to input order", func(t *testing.T) {
		var gotReq rerankRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
			// Results come back ordered by score, not input order.
			w.Write([]byte(`{"results": [
				{"index": 1, "relevance_score": 0.9},
				{"index": 0, "relevance_score": 0.3}
			]}`))
		}))
		defer server.Close()

		reranker := NewHTTPReranker(server.URL, WithRerankerModel("test-model"))
		scores, err := reranker.Score(ctx, "the query", []string{"doc a", "doc b"})
		require.NoError(t, err)

		assert.Equal(t, "test-model", gotReq.Model)
		assert.Equal(t, "the query", gotReq.Query)
		assert.Equal(t, []string{"doc a", "doc b"}, gotReq.Documents)

		require.Len(t, scores, 2)
		assert.InDelta(t, 0.3, scores[0], 1e-6)
		assert.InDelta(t, 0.9, scores[1], 1e-6)
	})

	t.Run("sends bearer token", func(t *testing.T) {
		var auth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			w.Write([]byte(`{"results": [{"index": 0, "relevance_score": 1}]}`))
		}))
		defer server.Close()

		reranker := NewHTTPReranker(server.URL, WithRerankerAPIKey("tok"))
		_, err := reranker.Score(ctx, "q", []string{"doc"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer tok", auth)
	})

	t.Run("empty documents skip the request", func(t *testing.T) {
		reranker := NewHTTPReranker("http://unused.example")
		scores, err := reranker.Score(ctx, "q", nil)
		require.NoError(t, err)
		assert.Empty(t, scores)
	})

	t.Run("count mismatch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"results": [{"index": 0, "relevance_score": 1}]}`))
		}))
		defer server.Close()

		reranker := NewHTTPReranker(server.URL)
		_, err := reranker.Score(ctx, "q", []string{"a", "b"})
		assert.ErrorIs(t, err, ErrScoreCountMismatch)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		reranker := NewHTTPReranker(server.URL)
		_, err := reranker.Score(ctx, "q", []string{"a"})
		assert.Error(t, err)
	})
}
