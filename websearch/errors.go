package websearch

import "errors"

var (
	// ErrEmptyQuery is returned when Search is called with a blank query.
	ErrEmptyQuery = errors.New("search query cannot be empty")

	// ErrMissingInstanceURL is returned when no SearXNG instance URL is
	// configured.
	ErrMissingInstanceURL = errors.New("searxng instance URL not provided")
)
