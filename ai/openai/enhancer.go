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


package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poiesic/ragpipe/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// QueryEnhancer implements ai.QueryEnhancer using OpenAI-compatible chat APIs.
// It asks the model for a JSON list of optimized search queries.
type QueryEnhancer struct {
	client     llms.Model
	maxQueries int
	logger     *slog.Logger
}

// searchQueries is an internal type used for JSON unmarshaling.
// It matches the structure the model is instructed to produce.
type searchQueries struct {
	Queries []string `json:"queries"`
}

// newQueryEnhancer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newQueryEnhancer(config *ai.Config) (*QueryEnhancer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.LLMHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.LLMModel),
	)
	if err != nil {
		return nil, err
	}

	return &QueryEnhancer{
		client:     client,
		maxQueries: config.MaxQueries,
		logger:     slog.Default().With("component", "openai-enhancer"),
	}, nil
}

// NewQueryEnhancer creates a new query enhancer using the provided
// configuration.
//
// Returns ai.QueryEnhancer interface to enforce abstraction.
func NewQueryEnhancer(config *ai.Config) (ai.QueryEnhancer, error) {
	return newQueryEnhancer(config)
}

// Enhance generates up to maxQueries optimized search queries for the given
// user query. Enhancement failures are non-fatal: the original query is
// returned as the sole search query so the pipeline can proceed.
func (e *QueryEnhancer) Enhance(ctx context.Context, query string) ([]string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildEnhancerSystemPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildEnhancerUserPrompt(query, e.maxQueries)),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result searchQueries
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Warn("query enhancement call failed, falling back to original query", "err", err)
			return []string{query}, nil
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return []string{query}, nil
		}

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(response.Choices[0].Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing enhancer response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil || len(result.Queries) == 0 {
		e.logger.Warn("query enhancement yielded no usable queries, falling back", "err", lastErr)
		return []string{query}, nil
	}

	queries := result.Queries
	if len(queries) > e.maxQueries {
		queries = queries[:e.maxQueries]
	}

	e.logger.Debug("enhanced query", "original", query, "queries", len(queries))
	return queries, nil
}
