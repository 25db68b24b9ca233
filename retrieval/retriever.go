// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package retrieval

import (
	"context"
	"log/slog"
	"sort"

	"github.com/poiesic/ragpipe/ai"
	"github.com/poiesic/ragpipe/core"
)

const (
	// DefaultTopKFirstStage is the candidate count kept after the cheap
	// cosine pass.
	DefaultTopKFirstStage = 50

	// DefaultScoreFloor drops chunks scoring below this in the first pass.
	DefaultScoreFloor = 0.0
)

// Retriever runs the cheap first stage of the retrieval funnel: cosine
// similarity between the query embedding and each chunk embedding.
type Retriever struct {
	embedder   ai.Embedder
	topK       int
	scoreFloor float32
	logger     *slog.Logger
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithTopKFirstStage sets how many candidates survive the first pass.
func WithTopKFirstStage(k int) RetrieverOption {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithScoreFloor sets the minimum cosine similarity to keep a chunk.
func WithScoreFloor(floor float32) RetrieverOption {
	return func(r *Retriever) {
		r.scoreFloor = floor
	}
}

// WithRetrieverLogger sets a custom logger.
func WithRetrieverLogger(logger *slog.Logger) RetrieverOption {
	return func(r *Retriever) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRetriever creates a first-stage retriever backed by embedder.
func NewRetriever(embedder ai.Embedder, opts ...RetrieverOption) (*Retriever, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	r := &Retriever{
		embedder:   embedder,
		topK:       DefaultTopKFirstStage,
		scoreFloor: DefaultScoreFloor,
		logger:     slog.Default().With("component", "retriever"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// FirstPass scores chunks against the query by cosine similarity and
// returns the top candidates, highest first. Chunks without an embedding
// are skipped and counted, never fatal. Ties keep input order.
func (r *Retriever) FirstPass(ctx context.Context, chunks []core.Chunk, query string) ([]core.Chunk, error) {
	if len(chunks) == 0 {
		return []core.Chunk{}, nil
	}

	queryEmbedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	scored := make([]core.Chunk, 0, len(chunks))
	skipped := 0
	for _, chunk := range chunks {
		if !chunk.HasEmbedding() {
			skipped++
			continue
		}
		similarity := CosineSimilarity(queryEmbedding, chunk.Embedding)
		if similarity < r.scoreFloor {
			continue
		}
		chunk.Relevance = similarity
		chunk.Scored = true
		scored = append(scored, chunk)
	}

	if skipped > 0 {
		r.logger.Warn("skipped chunks without embeddings", "count", skipped)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Relevance > scored[j].Relevance
	})

	if len(scored) > r.topK {
		scored = scored[:r.topK]
	}

	r.logger.Debug("first pass complete",
		"input", len(chunks), "scored", len(scored), "skipped", skipped)
	return scored, nil
}
