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


package core

import (
	"fmt"
	"strings"
)

// ValidateQuery validates a user query string.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return ErrEmptyQuery
	}
	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - SourceURL must not be empty
//
// NOT validated (populated by the funnel):
//   - Embedding (can be empty until the embedder runs)
//   - Relevance (meaningless until scored)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("chunk is nil")
	}

	if chunk.Content == "" {
		return ErrEmptyContent
	}

	if chunk.SourceURL == "" {
		return ErrMissingSourceURL
	}

	return nil
}
