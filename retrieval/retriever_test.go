package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/ragpipe/ai/mock"
	"github.com/poiesic/ragpipe/core"
)

// queryEmbedder returns a fixed vector for every query.
func queryEmbedder(vec []float32) *mock.MockEmbedder {
	m := mock.NewMockEmbedder()
	m.EmbedQueryFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vec, nil
	}
	return m
}

func TestNewRetriever(t *testing.T) {
	_, err := NewRetriever(nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestRetriever_FirstPass(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks by cosine similarity", func(t *testing.T) {
		r, err := NewRetriever(queryEmbedder([]float32{1, 0}))
		require.NoError(t, err)

		chunks := []core.Chunk{
			{Content: "far", Embedding: []float32{0, 1}},
			{Content: "near", Embedding: []float32{1, 0}},
			{Content: "mid", Embedding: []float32{1, 1}},
		}
		got, err := r.FirstPass(ctx, chunks, "q")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "near", got[0].Content)
		assert.Equal(t, "mid", got[1].Content)
		assert.Equal(t, "far", got[2].Content)

		for _, c := range got {
			assert.True(t, c.Scored)
		}
		// Monotone non-increasing relevance.
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].Relevance, got[i].Relevance)
		}
	})

	t.Run("skips chunks without embeddings", func(t *testing.T) {
		r, err := NewRetriever(queryEmbedder([]float32{1, 0}))
		require.NoError(t, err)

		chunks := []core.Chunk{
			{Content: "embedded", Embedding: []float32{1, 0}},
			{Content: "bare"},
			{Content: "also bare"},
		}
		got, err := r.FirstPass(ctx, chunks, "q")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "embedded", got[0].Content)
	})

	t.Run("ties keep input order", func(t *testing.T) {
		r, err := NewRetriever(queryEmbedder([]float32{1, 0}))
		require.NoError(t, err)

		// Same direction, same similarity.
		chunks := []core.Chunk{
			{Content: "first", Embedding: []float32{2, 0}},
			{Content: "second", Embedding: []float32{5, 0}},
			{Content: "third", Embedding: []float32{1, 0}},
		}
		got, err := r.FirstPass(ctx, chunks, "q")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "first", got[0].Content)
		assert.Equal(t, "second", got[1].Content)
		assert.Equal(t, "third", got[2].Content)
	})

	t.Run("applies score floor", func(t *testing.T) {
		r, err := NewRetriever(queryEmbedder([]float32{1, 0}), WithScoreFloor(0.5))
		require.NoError(t, err)

		chunks := []core.Chunk{
			{Content: "keep", Embedding: []float32{1, 0}},
			{Content: "drop", Embedding: []float32{0, 1}},
		}
		got, err := r.FirstPass(ctx, chunks, "q")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "keep", got[0].Content)
	})

	t.Run("truncates to top k", func(t *testing.T) {
		r, err := NewRetriever(queryEmbedder([]float32{1, 0}), WithTopKFirstStage(2))
		require.NoError(t, err)

		chunks := []core.Chunk{
			{Content: "a", Embedding: []float32{1, 0}},
			{Content: "b", Embedding: []float32{1, 0.1}},
			{Content: "c", Embedding: []float32{1, 0.2}},
		}
		got, err := r.FirstPass(ctx, chunks, "q")
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("empty input", func(t *testing.T) {
		embedder := queryEmbedder([]float32{1, 0})
		r, err := NewRetriever(embedder)
		require.NoError(t, err)

		got, err := r.FirstPass(ctx, nil, "q")
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Zero(t, embedder.CallCount(), "embedder should not be called for empty input")
	})

	t.Run("embedder failure is fatal", func(t *testing.T) {
		m := mock.NewMockEmbedder()
		m.EmbedQueryFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("embedding service down")
		}
		r, err := NewRetriever(m)
		require.NoError(t, err)

		_, err = r.FirstPass(ctx, []core.Chunk{{Content: "x", Embedding: []float32{1}}}, "q")
		assert.Error(t, err)
	})
}
