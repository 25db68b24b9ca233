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

package storage

import (
	"context"
	"time"
)

// CachedPage is a stored scrape outcome for a single URL. Failed
// fetches are cached too, so known-dead links are not refetched on
// every run.
type CachedPage struct {
	URL       string    `json:"url"`
	Content   string    `json:"content"`
	Strategy  string    `json:"strategy"`
	FetchedAt time.Time `json:"fetched_at"`
	Success   bool      `json:"success"`
	Err       string    `json:"err,omitempty"`
}

// PageCache stores scraped pages keyed by URL.
// Implementations must be thread-safe and support concurrent access.
type PageCache interface {
	// Get returns the cached page for url. The bool reports whether a
	// cached entry exists; a miss is not an error.
	Get(ctx context.Context, url string) (*CachedPage, bool, error)

	// Put stores or replaces the cached page for page.URL.
	Put(ctx context.Context, page *CachedPage) error

	// Delete removes the cached page for url. Deleting a missing entry
	// is a no-op.
	Delete(ctx context.Context, url string) error

	// Close closes the storage backend and releases resources.
	Close() error
}
