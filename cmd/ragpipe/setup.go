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

package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/ragpipe/ai"
	"github.com/poiesic/ragpipe/ai/openai"
	"github.com/poiesic/ragpipe/pipeline"
	"github.com/poiesic/ragpipe/retrieval"
	"github.com/poiesic/ragpipe/scrape"
	"github.com/poiesic/ragpipe/storage"
	"github.com/poiesic/ragpipe/storage/badger"
	"github.com/poiesic/ragpipe/websearch"
)

// components holds the pipeline collaborators built from CLI flags.
// They are shared across pipelines: one evaluation run builds a
// pipeline per case over the same search provider, scraper, funnel,
// and AI services.
type components struct {
	search     websearch.Provider
	scraper    scrape.Scraper
	httpScrape *scrape.HTTPScraper
	cache      storage.PageCache
	funnel     *retrieval.Funnel
	provider   ai.Provider
	enhance    bool
	maxSources int
}

func buildAIProvider(c *cli.Context) (ai.Provider, error) {
	config := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithLLMHost(c.String("llm-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithLLMModel(c.String("llm-model")),
		ai.WithAPIKey(c.String("api-key")),
	)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return openai.NewProvider(config)
}

func buildComponents(c *cli.Context) (*components, error) {
	provider, err := buildAIProvider(c)
	if err != nil {
		return nil, err
	}

	var searchOpts []websearch.SearXNGOption
	if key := c.String("searxng-api-key"); key != "" {
		searchOpts = append(searchOpts, websearch.WithAPIKey(key))
	}
	if engines := c.String("engines"); engines != "" {
		searchOpts = append(searchOpts, websearch.WithEngines(engines))
	}
	search, err := websearch.NewSearXNG(c.String("searxng-url"), searchOpts...)
	if err != nil {
		provider.Close()
		return nil, fmt.Errorf("failed to create search provider: %w", err)
	}

	httpScrape, err := scrape.NewHTTPScraper(scrape.WithConcurrency(c.Int("scrape-concurrency")))
	if err != nil {
		provider.Close()
		return nil, fmt.Errorf("failed to create scraper: %w", err)
	}

	var cache storage.PageCache
	if dbPath := c.String("cache-db"); dbPath != "" {
		cache, err = badger.NewPageCache(dbPath)
	} else {
		cache, err = badger.NewMemoryPageCache()
	}
	if err != nil {
		httpScrape.Release()
		provider.Close()
		return nil, fmt.Errorf("failed to open page cache: %w", err)
	}
	scraper, err := scrape.NewCachedScraper(httpScrape, cache)
	if err != nil {
		cache.Close()
		httpScrape.Release()
		provider.Close()
		return nil, err
	}

	retriever, err := retrieval.NewRetriever(provider.Embedder())
	if err != nil {
		cache.Close()
		httpScrape.Release()
		provider.Close()
		return nil, err
	}
	var rerankerOpts []retrieval.HTTPRerankerOption
	if model := c.String("reranker-model"); model != "" {
		rerankerOpts = append(rerankerOpts, retrieval.WithRerankerModel(model))
	}
	if key := c.String("reranker-api-key"); key != "" {
		rerankerOpts = append(rerankerOpts, retrieval.WithRerankerAPIKey(key))
	}
	reranker := retrieval.NewHTTPReranker(c.String("reranker-url"), rerankerOpts...)
	funnel, err := retrieval.NewFunnel(retriever, reranker)
	if err != nil {
		cache.Close()
		httpScrape.Release()
		provider.Close()
		return nil, err
	}

	return &components{
		search:     search,
		scraper:    scraper,
		httpScrape: httpScrape,
		cache:      cache,
		funnel:     funnel,
		provider:   provider,
		enhance:    !c.Bool("no-enhance"),
		maxSources: c.Int("max-sources"),
	}, nil
}

// newPipeline builds a fresh pipeline over the shared collaborators.
// Each pipeline carries its own conversation state, so concurrent
// callers each get their own.
func (co *components) newPipeline() (*pipeline.Pipeline, error) {
	opts := []pipeline.Option{
		pipeline.WithMaxSources(co.maxSources),
	}
	if co.enhance {
		opts = append(opts, pipeline.WithQueryEnhancer(co.provider.QueryEnhancer()))
	}
	return pipeline.NewPipeline(co.search, co.scraper, co.funnel, co.provider, opts...)
}

func (co *components) Close() {
	co.httpScrape.Release()
	co.cache.Close()
	co.provider.Close()
}
