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
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/ragpipe/ai"
	"github.com/poiesic/ragpipe/core"
	"github.com/poiesic/ragpipe/retrieval"
	"github.com/poiesic/ragpipe/scrape"
	"github.com/poiesic/ragpipe/websearch"
)

const (
	// DefaultMaxSources caps how many URLs a fresh turn scrapes.
	DefaultMaxSources = 10

	defaultSearchPoolSize = 5
)

// Pipeline orchestrates one conversation over the full search pipeline.
// The first turn searches, scrapes, chunks, and embeds fresh sources;
// follow-up turns re-rank the cached chunks against the new query
// without touching the network. A Pipeline is owned by one conversation
// and is not safe for concurrent turns; run one Pipeline per session.
type Pipeline struct {
	search    websearch.Provider
	scraper   scrape.Scraper
	chunker   *Chunker
	funnel    *retrieval.Funnel
	builder   *ContextBuilder
	embedder  ai.Embedder
	generator ai.Generator
	enhancer  ai.QueryEnhancer
	pool      *ants.Pool

	maxSources int
	logger     *Logger
	slogger    *slog.Logger

	mu           sync.Mutex
	history      []core.Message
	cachedChunks []core.Chunk
	lastContext  *core.Context
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithMaxSources caps the number of URLs scraped per fresh turn.
// Default is 10.
func WithMaxSources(n int) Option {
	return func(p *Pipeline) error {
		if n > 0 {
			p.maxSources = n
		}
		return nil
	}
}

// WithLogger sets the structured pipeline logger.
// Default is a fresh Logger.
func WithLogger(logger *Logger) Option {
	return func(p *Pipeline) error {
		if logger != nil {
			p.logger = logger
		}
		return nil
	}
}

// WithQueryEnhancer enables multi-query search fan-out. Without an
// enhancer each turn searches the user query verbatim.
func WithQueryEnhancer(enhancer ai.QueryEnhancer) Option {
	return func(p *Pipeline) error {
		p.enhancer = enhancer
		return nil
	}
}

// WithChunker replaces the default chunker.
func WithChunker(chunker *Chunker) Option {
	return func(p *Pipeline) error {
		if chunker != nil {
			p.chunker = chunker
		}
		return nil
	}
}

// WithContextBuilder replaces the default context builder.
func WithContextBuilder(builder *ContextBuilder) Option {
	return func(p *Pipeline) error {
		if builder != nil {
			p.builder = builder
		}
		return nil
	}
}

// WithPoolSize sets the worker pool size for the search fan-out.
// Default is 5.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// NewPipeline creates a pipeline from its collaborators. The provider
// supplies embedding and generation; query enhancement is opt-in via
// WithQueryEnhancer.
func NewPipeline(
	search websearch.Provider,
	scraper scrape.Scraper,
	funnel *retrieval.Funnel,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if search == nil {
		return nil, ErrSearchProviderRequired
	}
	if scraper == nil {
		return nil, ErrScraperRequired
	}
	if funnel == nil {
		return nil, ErrFunnelRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	pool, err := ants.NewPool(defaultSearchPoolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		search:     search,
		scraper:    scraper,
		chunker:    NewChunker(),
		funnel:     funnel,
		builder:    NewContextBuilder(),
		embedder:   provider.Embedder(),
		generator:  provider.Generator(),
		pool:       pool,
		maxSources: DefaultMaxSources,
		logger:     NewLogger(),
		slogger:    slog.Default().With("component", "pipeline"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	return p, nil
}

// Release frees the search worker pool.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Logger returns the pipeline's structured logger.
func (p *Pipeline) Logger() *Logger {
	return p.logger
}

// History returns a copy of the conversation so far.
func (p *Pipeline) History() []core.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]core.Message, len(p.history))
	copy(out, p.history)
	return out
}

// Clear resets the conversation: history, cached chunks, and the last
// built context are dropped, so the next turn is a fresh one.
func (p *Pipeline) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = nil
	p.cachedChunks = nil
	p.lastContext = nil
	p.logger.Log("conversation_cleared", map[string]any{
		"message": "conversation history and cached content have been cleared",
	})
}

// Run executes one conversational turn and returns the generated
// answer. State (history, cached chunks) is committed only when the
// whole turn succeeds; a failed turn leaves the conversation as it was.
func (p *Pipeline) Run(ctx context.Context, query string) (string, error) {
	if err := core.ValidateQuery(query); err != nil {
		return "", err
	}

	p.mu.Lock()
	followup := len(p.history) > 0
	cached := p.cachedChunks
	p.mu.Unlock()

	p.logger.Log("pipeline_start", map[string]any{
		"query":       query,
		"is_followup": followup,
	})

	var (
		answer  string
		chunks  []core.Chunk
		builtCx core.Context
		err     error
	)
	if followup {
		answer, builtCx, err = p.runFollowup(ctx, query, cached)
		chunks = cached
	} else {
		answer, chunks, builtCx, err = p.runFresh(ctx, query)
	}
	if err != nil {
		p.logger.LogError("pipeline_run", err, map[string]any{"query": query})
		return "", err
	}

	// Commit state only after the full turn succeeded.
	p.mu.Lock()
	p.history = append(p.history,
		core.Message{Role: core.RoleUser, Content: query},
		core.Message{Role: core.RoleAssistant, Content: answer},
	)
	p.cachedChunks = chunks
	p.lastContext = &builtCx
	p.mu.Unlock()

	p.logger.Log("pipeline_complete", map[string]any{
		"query":           query,
		"is_followup":     followup,
		"response_length": len(answer),
	})
	return answer, nil
}

// runFresh executes the full search-to-answer path for a first turn.
func (p *Pipeline) runFresh(ctx context.Context, query string) (string, []core.Chunk, core.Context, error) {
	hits, err := p.searchAll(ctx, query)
	if err != nil {
		return "", nil, core.Context{}, err
	}

	urls := PrioritizeURLs(hits)
	if len(urls) > p.maxSources {
		urls = urls[:p.maxSources]
	}
	p.logger.Log("url_extraction", map[string]any{
		"num_urls": len(urls),
		"urls":     urls,
	})

	scraped, err := p.scraper.ScrapeMany(ctx, urls)
	if err != nil {
		p.logger.LogError("scraping", err, map[string]any{"num_urls": len(urls)})
		return "", nil, core.Context{}, err
	}
	p.logger.Log("scraping", map[string]any{"num_urls_scraped": len(scraped)})

	chunks, err := p.chunkScraped(urls, scraped)
	if err != nil {
		p.logger.LogError("chunking", err, nil)
		return "", nil, core.Context{}, err
	}
	p.logger.Log("chunking", map[string]any{"num_chunks": len(chunks)})

	if err := p.embedChunks(ctx, chunks); err != nil {
		p.logger.LogError("embedding", err, map[string]any{"num_chunks": len(chunks)})
		return "", nil, core.Context{}, err
	}

	ranked, err := p.funnel.Retrieve(ctx, chunks, query)
	if err != nil {
		p.logger.LogError("retrieval", err, nil)
		return "", nil, core.Context{}, err
	}
	p.logger.Log("retrieval", map[string]any{
		"num_candidates": len(chunks),
		"num_ranked":     len(ranked),
	})

	builtCx := p.buildContext(ranked, query)

	answer, err := p.generate(ctx, builtCx, query)
	if err != nil {
		return "", nil, core.Context{}, err
	}
	return answer, chunks, builtCx, nil
}

// runFollowup re-ranks the cached chunks against the new query.
func (p *Pipeline) runFollowup(ctx context.Context, query string, cached []core.Chunk) (string, core.Context, error) {
	if len(cached) == 0 {
		return "", core.Context{}, ErrNoCachedChunks
	}

	ranked, err := p.funnel.Retrieve(ctx, cached, query)
	if err != nil {
		p.logger.LogError("followup_retrieval", err, nil)
		return "", core.Context{}, err
	}
	p.logger.Log("followup_retrieval", map[string]any{
		"num_candidates": len(cached),
		"num_ranked":     len(ranked),
	})

	builtCx := p.buildContext(ranked, query)

	answer, err := p.generate(ctx, builtCx, query)
	if err != nil {
		return "", core.Context{}, err
	}
	return answer, builtCx, nil
}

// searchAll fans the (possibly enhanced) queries out to the search
// provider concurrently and merges the results, first seen URL wins.
// Result sets merge in query order regardless of completion order.
func (p *Pipeline) searchAll(ctx context.Context, query string) ([]core.SearchHit, error) {
	queries := []string{query}
	if p.enhancer != nil {
		enhanced, err := p.enhancer.Enhance(ctx, query)
		if err == nil && len(enhanced) > 0 {
			queries = enhanced
		}
		p.logger.Log("query_enhancement", map[string]any{
			"original_query":   query,
			"enhanced_queries": queries,
		})
	}

	resultSets := make([][]core.SearchHit, len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		i, q := i, q
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			resultSets[i], errs[i] = p.search.Search(ctx, q, p.maxSources)
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()

	// A failed query contributes an empty result set; the turn proceeds
	// on the surviving queries. Only a total failure is fatal.
	var firstErr error
	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			resultSets[i] = nil
			p.logger.LogError("search", err, map[string]any{"query": queries[i]})
			p.slogger.Warn("search query failed", "query", queries[i], "error", err)
		}
	}
	if failed == len(queries) {
		return nil, firstErr
	}

	merged := MergeHits(resultSets...)
	p.logger.Log("search", map[string]any{
		"num_queries":    len(queries),
		"failed_queries": failed,
		"num_results":    len(merged),
	})
	return merged, nil
}

// chunkScraped splits successfully scraped pages in URL priority order.
func (p *Pipeline) chunkScraped(urls []string, scraped map[string]scrape.Result) ([]core.Chunk, error) {
	var chunks []core.Chunk
	for _, u := range urls {
		res, ok := scraped[u]
		if !ok || !res.Success || res.Content == "" {
			continue
		}
		split, err := p.chunker.Split(res.Content, u, res.Strategy)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, split...)
	}
	return chunks, nil
}

// embedChunks attaches embeddings in place, one batch for all chunks.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return err
	}

	dim := 0
	for i := range chunks {
		if i < len(embeddings) {
			chunks[i].Embedding = embeddings[i]
			dim = len(embeddings[i])
		}
	}

	p.logger.Log("embedding", map[string]any{
		"num_chunks":    len(chunks),
		"embedding_dim": dim,
	})
	return nil
}

func (p *Pipeline) buildContext(ranked []core.Chunk, query string) core.Context {
	builtCx := p.builder.Build(ranked, query)
	p.logger.Log("context_building", map[string]any{
		"context_length":  len(builtCx.User),
		"num_chunks_used": len(ranked),
	})
	return builtCx
}

// generate calls the model with the system prompt, the conversation so
// far, and the freshly built context as the user turn.
func (p *Pipeline) generate(ctx context.Context, builtCx core.Context, query string) (string, error) {
	p.mu.Lock()
	history := make([]core.Message, len(p.history))
	copy(history, p.history)
	p.mu.Unlock()

	messages := make([]core.Message, 0, len(history)+2)
	messages = append(messages, core.Message{Role: core.RoleSystem, Content: builtCx.System})
	messages = append(messages, history...)
	messages = append(messages, core.Message{Role: core.RoleUser, Content: builtCx.User})

	answer, err := p.generator.Generate(ctx, messages)
	if err != nil {
		p.logger.LogError("response_generation", err, map[string]any{"query": query})
		return "", err
	}

	p.logger.Log("response_generation", map[string]any{
		"query":           query,
		"response_length": len(answer),
	})
	return answer, nil
}
