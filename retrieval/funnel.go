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

	"github.com/poiesic/ragpipe/core"
)

// DefaultTopKFinal is the chunk count surviving the full funnel.
const DefaultTopKFinal = 10

// Funnel is the two-stage retrieval funnel: a cheap cosine pass over all
// chunks followed by an expensive cross-encoder pass over the survivors.
type Funnel struct {
	retriever *Retriever
	reranker  Reranker
	topKFinal int
	logger    *slog.Logger
}

// FunnelOption configures a Funnel.
type FunnelOption func(*Funnel)

// WithTopKFinal sets how many chunks survive the second pass.
func WithTopKFinal(k int) FunnelOption {
	return func(f *Funnel) {
		if k > 0 {
			f.topKFinal = k
		}
	}
}

// WithFunnelLogger sets a custom logger.
func WithFunnelLogger(logger *slog.Logger) FunnelOption {
	return func(f *Funnel) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFunnel creates a funnel from a first-stage retriever and a reranker.
func NewFunnel(retriever *Retriever, reranker Reranker, opts ...FunnelOption) (*Funnel, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if reranker == nil {
		return nil, ErrRerankerRequired
	}
	f := &Funnel{
		retriever: retriever,
		reranker:  reranker,
		topKFinal: DefaultTopKFinal,
		logger:    slog.Default().With("component", "funnel"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Retrieve runs both funnel stages and returns the final ranked chunks,
// highest relevance first. Collaborator failures are fatal to the call.
func (f *Funnel) Retrieve(ctx context.Context, chunks []core.Chunk, query string) ([]core.Chunk, error) {
	candidates, err := f.retriever.FirstPass(ctx, chunks, query)
	if err != nil {
		return nil, err
	}
	return f.SecondPass(ctx, candidates, query)
}

// SecondPass rescores candidates with the cross-encoder and truncates to
// the final top-k. A stable sort keeps first-pass order for equal scores.
// Empty input returns empty output without calling the reranker.
func (f *Funnel) SecondPass(ctx context.Context, candidates []core.Chunk, query string) ([]core.Chunk, error) {
	if len(candidates) == 0 {
		return []core.Chunk{}, nil
	}

	documents := make([]string, len(candidates))
	for i, chunk := range candidates {
		documents[i] = chunk.Content
	}

	scores, err := f.reranker.Score(ctx, query, documents)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(candidates) {
		return nil, ErrScoreCountMismatch
	}

	ranked := make([]core.Chunk, len(candidates))
	copy(ranked, candidates)
	for i := range ranked {
		ranked[i].Relevance = float32(scores[i])
		ranked[i].Scored = true
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Relevance > ranked[j].Relevance
	})

	if len(ranked) > f.topKFinal {
		ranked = ranked[:f.topKFinal]
	}

	f.logger.Debug("second pass complete", "candidates", len(candidates), "kept", len(ranked))
	return ranked, nil
}
