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

// Package pipeline orchestrates the search-augmented answer pipeline:
// search, scrape, chunk, embed, retrieve, rerank, assemble, generate.
//
// A Pipeline holds one conversation. The first turn builds a chunk
// cache from fresh web sources; follow-up turns re-rank that cache
// against the new query instead of searching again. Clear resets the
// conversation to a fresh state.
//
// Every stage writes structured entries to a Logger, a bounded
// in-memory buffer that interactive callers inspect per turn and batch
// callers flush per case.
package pipeline
