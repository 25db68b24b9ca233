package retrieval

import "errors"

var (
	// ErrEmbedderRequired is returned when a retriever is built without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrRerankerRequired is returned when a funnel is built without a reranker.
	ErrRerankerRequired = errors.New("reranker is required")

	// ErrRetrieverRequired is returned when a funnel is built without a retriever.
	ErrRetrieverRequired = errors.New("retriever is required")

	// ErrScoreCountMismatch is returned when a reranker returns a score
	// count that does not match the number of inputs.
	ErrScoreCountMismatch = errors.New("reranker returned wrong number of scores")
)
