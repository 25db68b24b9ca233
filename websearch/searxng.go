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

package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/ragpipe/core"
)

const (
	// defaultNumResults is used when the caller passes a non-positive count.
	defaultNumResults = 8

	// maxNumResults caps the per-query result count.
	maxNumResults = 20

	defaultTimeout = 10 * time.Second

	defaultEngines = "google,bing,duckduckgo"
)

// SearXNG is a Provider backed by a SearXNG metasearch instance.
type SearXNG struct {
	instanceURL string
	apiKey      string
	engines     string
	client      *http.Client
	logger      *slog.Logger
}

// SearXNGOption configures a SearXNG provider.
type SearXNGOption func(*SearXNG)

// WithAPIKey sets the X-API-Key header sent with every request.
func WithAPIKey(key string) SearXNGOption {
	return func(s *SearXNG) {
		s.apiKey = key
	}
}

// WithEngines overrides the comma-separated engine list.
func WithEngines(engines string) SearXNGOption {
	return func(s *SearXNG) {
		s.engines = engines
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) SearXNGOption {
	return func(s *SearXNG) {
		s.client = client
	}
}

// WithTimeout sets the request timeout on the default client.
func WithTimeout(d time.Duration) SearXNGOption {
	return func(s *SearXNG) {
		s.client.Timeout = d
	}
}

// NewSearXNG creates a provider for the given instance URL. The URL is
// normalized to end in /search, which is the SearXNG query endpoint.
func NewSearXNG(instanceURL string, opts ...SearXNGOption) (*SearXNG, error) {
	if strings.TrimSpace(instanceURL) == "" {
		return nil, ErrMissingInstanceURL
	}
	if !strings.HasSuffix(instanceURL, "/search") {
		instanceURL = strings.TrimSuffix(instanceURL, "/") + "/search"
	}

	s := &SearXNG{
		instanceURL: instanceURL,
		engines:     defaultEngines,
		client:      &http.Client{Timeout: defaultTimeout},
		logger:      slog.Default().With("component", "websearch"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// searxngResult is the subset of a SearXNG result entry we consume.
// publishedDate is empty for many results.
type searxngResult struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Content       string `json:"content"`
	PublishedDate string `json:"publishedDate"`
}

type searxngResponse struct {
	Results []searxngResult `json:"results"`
}

// Search implements Provider.
func (s *SearXNG) Search(ctx context.Context, query string, numResults int) ([]core.SearchHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if numResults <= 0 {
		numResults = defaultNumResults
	}
	if numResults > maxNumResults {
		numResults = maxNumResults
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("pageno", "1")
	params.Set("categories", "general")
	params.Set("language", "all")
	params.Set("safesearch", "0")
	params.Set("engines", s.engines)
	params.Set("max_results", strconv.Itoa(numResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.instanceURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}

	s.logger.Debug("searching", "query", query, "num_results", numResults)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searxng request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("searxng returned status %d", resp.StatusCode)
	}

	var body searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding searxng response: %w", err)
	}

	hits := make([]core.SearchHit, 0, numResults)
	for _, r := range body.Results {
		if len(hits) >= numResults {
			break
		}
		hits = append(hits, core.SearchHit{
			Title:         r.Title,
			URL:           r.URL,
			Snippet:       r.Content,
			PublishedDate: r.PublishedDate,
		})
	}

	s.logger.Debug("search complete", "query", query, "hits", len(hits))
	return hits, nil
}
