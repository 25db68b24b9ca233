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
	"sort"

	"github.com/poiesic/ragpipe/core"
)

// MergeHits unions result sets from multiple queries on URL. The first
// occurrence of a URL wins; later duplicates are dropped entirely, so
// merging is idempotent and order-preserving across the input sets.
func MergeHits(resultSets ...[]core.SearchHit) []core.SearchHit {
	merged := make([]core.SearchHit, 0)
	seen := make(map[string]bool)

	for _, results := range resultSets {
		for _, hit := range results {
			if hit.URL == "" || seen[hit.URL] {
				continue
			}
			seen[hit.URL] = true
			merged = append(merged, hit)
		}
	}
	return merged
}

// PrioritizeURLs orders hits newest-first and returns their URLs. Hits
// with a publication date sort descending by date string; undated hits
// keep their relative order after all dated ones.
func PrioritizeURLs(hits []core.SearchHit) []string {
	dated := make([]core.SearchHit, 0, len(hits))
	undated := make([]core.SearchHit, 0, len(hits))
	for _, hit := range hits {
		if hit.PublishedDate != "" {
			dated = append(dated, hit)
		} else {
			undated = append(undated, hit)
		}
	}

	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].PublishedDate > dated[j].PublishedDate
	})

	urls := make([]string, 0, len(hits))
	for _, hit := range append(dated, undated...) {
		urls = append(urls, hit.URL)
	}
	return urls
}
