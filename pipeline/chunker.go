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
	"github.com/poiesic/ragpipe/core"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is how many characters adjacent chunks share.
	DefaultChunkOverlap = 100
)

// Chunker splits extracted page text into overlapping chunks that carry
// source provenance.
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
}

// ChunkerOption configures a Chunker.
type ChunkerOption func(*chunkerConfig)

type chunkerConfig struct {
	chunkSize    int
	chunkOverlap int
}

// WithChunkSize sets the target chunk length.
func WithChunkSize(size int) ChunkerOption {
	return func(c *chunkerConfig) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithChunkOverlap sets the overlap between adjacent chunks.
func WithChunkOverlap(overlap int) ChunkerOption {
	return func(c *chunkerConfig) {
		if overlap >= 0 {
			c.chunkOverlap = overlap
		}
	}
}

// NewChunker creates a chunker that splits on paragraph then line
// boundaries.
func NewChunker(opts ...ChunkerOption) *Chunker {
	cfg := &chunkerConfig{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithSeparators([]string{"\n\n", "\n"}),
			textsplitter.WithChunkSize(cfg.chunkSize),
			textsplitter.WithChunkOverlap(cfg.chunkOverlap),
		),
	}
}

// Split chunks a single document, stamping each chunk with its source
// URL, the extraction strategy, and its position in the document.
func (c *Chunker) Split(content, sourceURL, strategy string) ([]core.Chunk, error) {
	texts, err := c.splitter.SplitText(content)
	if err != nil {
		return nil, err
	}

	chunks := make([]core.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = core.Chunk{
			Content:     text,
			SourceURL:   sourceURL,
			Strategy:    strategy,
			Index:       i,
			TotalChunks: len(texts),
		}
	}
	return chunks, nil
}
