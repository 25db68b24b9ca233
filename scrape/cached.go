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

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/ragpipe/storage"
)

// CachedScraper wraps another Scraper with a persistent page cache.
// Cache hits are served without touching the network; misses are
// delegated and the outcome stored, failures included, so a dead link
// is not retried on every run.
type CachedScraper struct {
	inner  Scraper
	cache  storage.PageCache
	logger *slog.Logger
}

// NewCachedScraper wraps inner with cache. Both are required.
func NewCachedScraper(inner Scraper, cache storage.PageCache) (*CachedScraper, error) {
	if inner == nil {
		return nil, ErrScraperRequired
	}
	if cache == nil {
		return nil, ErrCacheRequired
	}
	return &CachedScraper{
		inner:  inner,
		cache:  cache,
		logger: slog.Default().With("component", "scraper-cache"),
	}, nil
}

// ScrapeMany implements Scraper. Cache read or write failures degrade to
// plain scraping; they never fail the batch.
func (c *CachedScraper) ScrapeMany(ctx context.Context, urls []string) (map[string]Result, error) {
	results := make(map[string]Result, len(urls))
	misses := make([]string, 0, len(urls))

	for _, u := range urls {
		page, found, err := c.cache.Get(ctx, u)
		if err != nil {
			c.logger.Warn("cache read failed", "url", u, "error", err)
			misses = append(misses, u)
			continue
		}
		if !found {
			misses = append(misses, u)
			continue
		}
		results[u] = Result{
			Success:  page.Success,
			Content:  page.Content,
			Strategy: page.Strategy,
			Err:      page.Err,
		}
	}

	c.logger.Debug("cache lookup", "urls", len(urls), "hits", len(results), "misses", len(misses))

	if len(misses) == 0 {
		return results, nil
	}

	fresh, err := c.inner.ScrapeMany(ctx, misses)
	for u, res := range fresh {
		results[u] = res
		page := &storage.CachedPage{
			URL:       u,
			Content:   res.Content,
			Strategy:  res.Strategy,
			FetchedAt: time.Now().UTC(),
			Success:   res.Success,
			Err:       res.Err,
		}
		if putErr := c.cache.Put(ctx, page); putErr != nil {
			c.logger.Warn("cache write failed", "url", u, "error", putErr)
		}
	}
	return results, err
}
