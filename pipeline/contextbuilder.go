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

package pipeline

import (
	"fmt"
	"strings"

	"github.com/poiesic/ragpipe/core"
)

const contextSystemPrompt = `You are a helpful AI assistant. Answer the query naturally and conversationally using the provided context.
- Use information from the context to support your answer
- Cite sources using [1], [2] etc. when referencing specific information
- Be concise and direct
- If you're not sure about something, say so
- If the context doesn't help answer the query, use your own knowledge but mention this
- Respond in the same language as the query
- Focus on being helpful rather than explaining your citations

Example of good response style:
"John Smith is a software engineer at Google [1] who specializes in machine learning. He previously worked at Microsoft [2] and has published several papers on AI safety."`

const contextUserTemplate = `### Query:
%s

### Context:
<context>
%s
</context>

### Response:`

// ContextBuilder assembles ranked chunks into a model-ready prompt.
// Chunks are wrapped in source tags carrying the URL, a 1-based citation
// id, and the relevance score, in ranked order. The builder never
// truncates; budget control happens upstream in the funnel.
type ContextBuilder struct {
	includeScores bool
}

// ContextBuilderOption configures a ContextBuilder.
type ContextBuilderOption func(*ContextBuilder)

// WithoutScores omits relevance attributes from source tags.
func WithoutScores() ContextBuilderOption {
	return func(b *ContextBuilder) {
		b.includeScores = false
	}
}

// NewContextBuilder creates a builder that includes relevance scores.
func NewContextBuilder(opts ...ContextBuilderOption) *ContextBuilder {
	b := &ContextBuilder{includeScores: true}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build formats chunks and the query into a core.Context. Chunks without
// content or a source URL are skipped; citation ids number the chunks
// that were actually included. Identical inputs produce byte-identical
// output.
func (b *ContextBuilder) Build(chunks []core.Chunk, query string) core.Context {
	blocks := make([]string, 0, len(chunks))
	id := 0
	for _, chunk := range chunks {
		if chunk.Content == "" || chunk.SourceURL == "" {
			continue
		}
		id++

		attrs := fmt.Sprintf("url=%q id=%q", chunk.SourceURL, fmt.Sprint(id))
		if b.includeScores && chunk.Scored {
			attrs += fmt.Sprintf(" relevance=%q", fmt.Sprintf("%.2f", chunk.Relevance))
		}
		blocks = append(blocks, fmt.Sprintf("<source %s>\n%s\n</source>", attrs, chunk.Content))
	}

	return core.Context{
		System: contextSystemPrompt,
		User:   fmt.Sprintf(contextUserTemplate, query, strings.Join(blocks, "\n\n")),
	}
}
