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


// Package ai provides abstractions for the model services used by the
// pipeline.
//
// This package defines interfaces for text embedding, completion generation
// and search-query enhancement. The pipeline and the retrieval funnel depend
// on these abstractions rather than on concrete backends.
//
// The package is designed around four interfaces:
//
//   - Embedder: generates vector embeddings from text
//   - Generator: produces a completion from a message sequence
//   - QueryEnhancer: fans a user query out into optimized search queries
//   - Provider: aggregates the services for convenient initialization
//
// Two implementation sub-packages are included:
//
//   - ai/openai: production implementation for OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external dependencies
//
// Public constructors in ai/openai return interface types to enforce
// abstraction; the mock constructors return concrete types so tests can
// inject behavior and assert on call counts.
package ai
