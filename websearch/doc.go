// Package websearch provides web search providers for the retrieval
// pipeline. The SearXNG client talks to a self-hosted metasearch
// instance over its JSON API.
package websearch
