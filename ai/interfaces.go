package ai

import (
	"context"

	"github.com/poiesic/ragpipe/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedQuery generates a vector embedding for a single query string.
	// Empty text yields a zero vector of the model's fixed dimension.
	// Returns an error if the embedding generation fails.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces a completion from an ordered message sequence.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate sends the messages to the model and returns the completion text.
	// Options control sampling temperature and output length.
	Generate(ctx context.Context, messages []core.Message, opts ...GenerateOption) (string, error)
}

// QueryEnhancer fans a single user query out into multiple optimized
// search queries. Implementations return at most their configured maximum
// number of queries; a failed enhancement falls back to the original query
// rather than returning an error.
type QueryEnhancer interface {
	// Enhance returns search queries derived from the user query.
	// The result is never empty: on failure it contains the original query.
	Enhance(ctx context.Context, query string) ([]string, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder, Generator
// and QueryEnhancer instances sharing configuration and resources.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Generator returns the completion service.
	Generator() Generator

	// QueryEnhancer returns the search-query enhancement service.
	QueryEnhancer() QueryEnhancer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
