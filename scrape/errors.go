package scrape

import "errors"

var (
	// ErrScraperRequired is returned when a wrapper is built without an
	// inner scraper.
	ErrScraperRequired = errors.New("scraper is required")

	// ErrCacheRequired is returned when a cached scraper is built without
	// a page cache.
	ErrCacheRequired = errors.New("page cache is required")
)
