// Package scrape fetches web pages and extracts their visible text for
// downstream chunking. Batches run through a bounded worker pool, and
// per-URL failures are recorded in the batch result rather than aborting
// it. CachedScraper adds a persistent cache layer so repeated runs over
// the same URLs skip the network.
package scrape
