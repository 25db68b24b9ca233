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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Reranker scores documents against a query with a cross-encoder.
// Scores are returned in input order, one per document.
type Reranker interface {
	Score(ctx context.Context, query string, documents []string) ([]float64, error)
}

const (
	defaultRerankerModel   = "jina-reranker-v2-base-multilingual"
	defaultRerankerTimeout = 30 * time.Second
)

// HTTPReranker calls a hosted rerank endpoint (Jina-compatible JSON API).
type HTTPReranker struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

// HTTPRerankerOption configures an HTTPReranker.
type HTTPRerankerOption func(*HTTPReranker)

// WithRerankerModel sets the model name sent with each request.
func WithRerankerModel(model string) HTTPRerankerOption {
	return func(r *HTTPReranker) {
		r.model = model
	}
}

// WithRerankerAPIKey sets the bearer token.
func WithRerankerAPIKey(key string) HTTPRerankerOption {
	return func(r *HTTPReranker) {
		r.apiKey = key
	}
}

// WithRerankerHTTPClient replaces the underlying HTTP client.
func WithRerankerHTTPClient(client *http.Client) HTTPRerankerOption {
	return func(r *HTTPReranker) {
		r.client = client
	}
}

// NewHTTPReranker creates a reranker client for the given endpoint URL.
func NewHTTPReranker(endpoint string, opts ...HTTPRerankerOption) *HTTPReranker {
	r := &HTTPReranker{
		endpoint: endpoint,
		model:    defaultRerankerModel,
		client:   &http.Client{Timeout: defaultRerankerTimeout},
		logger:   slog.Default().With("component", "reranker"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// Score implements Reranker.
func (r *HTTPReranker) Score(ctx context.Context, query string, documents []string) ([]float64, error) {
	if len(documents) == 0 {
		return []float64{}, nil
	}

	payload, err := json.Marshal(rerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: documents,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rerank endpoint returned status %d", resp.StatusCode)
	}

	var body rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding rerank response: %w", err)
	}
	if len(body.Results) != len(documents) {
		return nil, fmt.Errorf("%w: got %d, want %d",
			ErrScoreCountMismatch, len(body.Results), len(documents))
	}

	// The API returns results ordered by score; restore input order.
	scores := make([]float64, len(documents))
	for _, res := range body.Results {
		if res.Index < 0 || res.Index >= len(scores) {
			return nil, fmt.Errorf("rerank result index %d out of range", res.Index)
		}
		scores[res.Index] = res.RelevanceScore
	}

	r.logger.Debug("reranked", "documents", len(documents))
	return scores, nil
}
