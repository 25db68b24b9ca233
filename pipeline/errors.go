package pipeline

import "errors"

var (
	// ErrNoCachedChunks is returned when a follow-up turn finds no chunks
	// cached from an earlier fresh turn.
	ErrNoCachedChunks = errors.New("no cached chunks available for follow-up query")

	// ErrSearchProviderRequired is returned when a pipeline is built
	// without a search provider.
	ErrSearchProviderRequired = errors.New("search provider is required")

	// ErrScraperRequired is returned when a pipeline is built without a scraper.
	ErrScraperRequired = errors.New("scraper is required")

	// ErrFunnelRequired is returned when a pipeline is built without a funnel.
	ErrFunnelRequired = errors.New("retrieval funnel is required")

	// ErrProviderRequired is returned when a pipeline is built without an
	// AI provider.
	ErrProviderRequired = errors.New("ai provider is required")
)
