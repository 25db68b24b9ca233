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

package scrape

import "context"

// Result holds the outcome of scraping a single URL. A failed fetch is
// recorded here rather than surfaced as an error, so one dead link never
// sinks a batch.
type Result struct {
	// Success reports whether usable content was extracted.
	Success bool

	// Content is the extracted page text. Empty when Success is false.
	Content string

	// Strategy names the extraction strategy that produced Content.
	Strategy string

	// Err describes the failure when Success is false.
	Err string
}

// Scraper fetches page content for a set of URLs.
type Scraper interface {
	// ScrapeMany fetches all URLs concurrently and returns a result per
	// URL. Individual fetch failures are reported in the per-URL Result;
	// the returned error covers only batch-level failures such as a
	// cancelled context.
	ScrapeMany(ctx context.Context, urls []string) (map[string]Result, error)
}
