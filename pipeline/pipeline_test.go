package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/ragpipe/ai"
	"github.com/poiesic/ragpipe/ai/mock"
	"github.com/poiesic/ragpipe/core"
	"github.com/poiesic/ragpipe/retrieval"
	"github.com/poiesic/ragpipe/scrape"
)

// fakeSearch returns canned hits and records queries. Queries fan out
// concurrently, so access is mutex-guarded.
type fakeSearch struct {
	mu      sync.Mutex
	hits    []core.SearchHit
	queries []string
	err     error
	errFor  string // this query fails, others succeed
}

func (f *fakeSearch) Search(ctx context.Context, query string, numResults int) ([]core.SearchHit, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.errFor != "" && query == f.errFor {
		return nil, errors.New("engine timeout")
	}
	return f.hits, nil
}

func (f *fakeSearch) seenQueries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

// fakeScraper records batches and serves fixed page content.
type fakeScraper struct {
	batches [][]string
	err     error
}

func (f *fakeScraper) ScrapeMany(ctx context.Context, urls []string) (map[string]scrape.Result, error) {
	f.batches = append(f.batches, urls)
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]scrape.Result, len(urls))
	for _, u := range urls {
		out[u] = scrape.Result{
			Success:  true,
			Content:  fmt.Sprintf("body of %s\n\nmore text from %s", u, u),
			Strategy: scrape.StrategyHTTP,
		}
	}
	return out, nil
}

func newTestPipeline(t *testing.T, search *fakeSearch, scraper *fakeScraper, opts ...Option) (*Pipeline, *mock.MockProvider) {
	t.Helper()
	provider := mock.NewMockProvider()

	retriever, err := retrieval.NewRetriever(provider.Embedder())
	require.NoError(t, err)
	funnel, err := retrieval.NewFunnel(retriever, &retrieval.MockReranker{})
	require.NoError(t, err)

	p, err := NewPipeline(search, scraper, funnel, provider, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p, provider
}

func threeHits() []core.SearchHit {
	return []core.SearchHit{
		{URL: "https://a.example", Title: "A", PublishedDate: "2024-01-15"},
		{URL: "https://b.example", Title: "B"},
		{URL: "https://c.example", Title: "C", PublishedDate: "2024-06-01"},
	}
}

func TestNewPipeline_Validation(t *testing.T) {
	provider := mock.NewMockProvider()
	retriever, err := retrieval.NewRetriever(provider.Embedder())
	require.NoError(t, err)
	funnel, err := retrieval.NewFunnel(retriever, &retrieval.MockReranker{})
	require.NoError(t, err)

	_, err = NewPipeline(nil, &fakeScraper{}, funnel, provider)
	assert.ErrorIs(t, err, ErrSearchProviderRequired)

	_, err = NewPipeline(&fakeSearch{}, nil, funnel, provider)
	assert.ErrorIs(t, err, ErrScraperRequired)

	_, err = NewPipeline(&fakeSearch{}, &fakeScraper{}, nil, provider)
	assert.ErrorIs(t, err, ErrFunnelRequired)

	_, err = NewPipeline(&fakeSearch{}, &fakeScraper{}, funnel, nil)
	assert.ErrorIs(t, err, ErrProviderRequired)
}

func TestPipeline_FreshTurn(t *testing.T) {
	search := &fakeSearch{hits: threeHits()}
	scraper := &fakeScraper{}
	p, provider := newTestPipeline(t, search, scraper)
	provider.GetMockGenerator().Response = "the answer"

	answer, err := p.Run(context.Background(), "what happened?")
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)

	// Every merged URL is scraped exactly once, newest first.
	require.Len(t, scraper.batches, 1)
	assert.Equal(t,
		[]string{"https://c.example", "https://a.example", "https://b.example"},
		scraper.batches[0])

	// History committed as user/assistant pair.
	history := p.History()
	require.Len(t, history, 2)
	assert.Equal(t, core.RoleUser, history[0].Role)
	assert.Equal(t, "what happened?", history[0].Content)
	assert.Equal(t, core.RoleAssistant, history[1].Role)
}

func TestPipeline_MaxSources(t *testing.T) {
	search := &fakeSearch{hits: threeHits()}
	scraper := &fakeScraper{}
	p, _ := newTestPipeline(t, search, scraper, WithMaxSources(2))

	_, err := p.Run(context.Background(), "q")
	require.NoError(t, err)

	require.Len(t, scraper.batches, 1)
	assert.Len(t, scraper.batches[0], 2)
}

func TestPipeline_FollowupUsesCache(t *testing.T) {
	search := &fakeSearch{hits: threeHits()}
	scraper := &fakeScraper{}
	p, _ := newTestPipeline(t, search, scraper)

	_, err := p.Run(context.Background(), "first question")
	require.NoError(t, err)
	searchesAfterFresh := len(search.seenQueries())
	scrapesAfterFresh := len(scraper.batches)

	_, err = p.Run(context.Background(), "and then?")
	require.NoError(t, err)

	assert.Equal(t, searchesAfterFresh, len(search.seenQueries()), "follow-up must not search")
	assert.Equal(t, scrapesAfterFresh, len(scraper.batches), "follow-up must not scrape")
	assert.Len(t, p.History(), 4)
}

func TestPipeline_FollowupWithoutCache(t *testing.T) {
	// A successful turn that produced no chunks (no search hits) still
	// commits history, so the next turn is a follow-up with an empty cache.
	search := &fakeSearch{hits: nil}
	scraper := &fakeScraper{}
	p, _ := newTestPipeline(t, search, scraper)

	_, err := p.Run(context.Background(), "first")
	require.NoError(t, err)

	_, err = p.Run(context.Background(), "second")
	assert.ErrorIs(t, err, ErrNoCachedChunks)
}

func TestPipeline_StatePreservedOnFailure(t *testing.T) {
	search := &fakeSearch{hits: threeHits()}
	scraper := &fakeScraper{}
	p, provider := newTestPipeline(t, search, scraper)

	_, err := p.Run(context.Background(), "good turn")
	require.NoError(t, err)
	require.Len(t, p.History(), 2)

	provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, messages []core.Message, opts ...ai.GenerateOption) (string, error) {
		return "", errors.New("model overloaded")
	}

	_, err = p.Run(context.Background(), "bad turn")
	require.Error(t, err)
	assert.Len(t, p.History(), 2, "failed turn must not touch history")

	// Recovery: turn succeeds again with the same cached chunks.
	provider.GetMockGenerator().GenerateFunc = nil
	_, err = p.Run(context.Background(), "retry")
	require.NoError(t, err)
	assert.Len(t, p.History(), 4)
}

func TestPipeline_Clear(t *testing.T) {
	search := &fakeSearch{hits: threeHits()}
	scraper := &fakeScraper{}
	p, _ := newTestPipeline(t, search, scraper)

	_, err := p.Run(context.Background(), "first")
	require.NoError(t, err)
	p.Clear()
	assert.Empty(t, p.History())

	// Next turn is fresh again: searches and scrapes.
	_, err = p.Run(context.Background(), "after clear")
	require.NoError(t, err)
	assert.Len(t, scraper.batches, 2)
}

func TestPipeline_QueryEnhancerFanOut(t *testing.T) {
	search := &fakeSearch{hits: threeHits()}
	scraper := &fakeScraper{}

	enhancer := mock.NewMockQueryEnhancer()
	enhancer.EnhanceFunc = func(ctx context.Context, query string) ([]string, error) {
		return []string{query + " v1", query + " v2"}, nil
	}

	p, _ := newTestPipeline(t, search, scraper, WithQueryEnhancer(enhancer))

	_, err := p.Run(context.Background(), "base")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"base v1", "base v2"}, search.seenQueries())
	// Identical hit sets from both queries merge to one scrape batch.
	require.Len(t, scraper.batches, 1)
	assert.Len(t, scraper.batches[0], 3)
}

func TestPipeline_EnhancerFailureFallsBack(t *testing.T) {
	search := &fakeSearch{hits: threeHits()}
	scraper := &fakeScraper{}

	enhancer := mock.NewMockQueryEnhancer()
	enhancer.EnhanceFunc = func(ctx context.Context, query string) ([]string, error) {
		return nil, errors.New("enhancer down")
	}

	p, _ := newTestPipeline(t, search, scraper, WithQueryEnhancer(enhancer))

	_, err := p.Run(context.Background(), "base")
	require.NoError(t, err)
	assert.Equal(t, []string{"base"}, search.seenQueries())
}

func TestPipeline_SearchFailureIsFatal(t *testing.T) {
	search := &fakeSearch{err: errors.New("search down")}
	p, _ := newTestPipeline(t, search, &fakeScraper{})

	_, err := p.Run(context.Background(), "q")
	require.Error(t, err)
	assert.Empty(t, p.History())
}

func TestPipeline_PartialSearchFailure(t *testing.T) {
	search := &fakeSearch{hits: threeHits(), errFor: "base v2"}
	scraper := &fakeScraper{}

	enhancer := mock.NewMockQueryEnhancer()
	enhancer.EnhanceFunc = func(ctx context.Context, query string) ([]string, error) {
		return []string{query + " v1", query + " v2"}, nil
	}

	p, _ := newTestPipeline(t, search, scraper, WithQueryEnhancer(enhancer))

	// One of two enhanced queries fails; the turn proceeds on the
	// survivor's hits.
	answer, err := p.Run(context.Background(), "base")
	require.NoError(t, err)
	assert.NotEmpty(t, answer)
	require.Len(t, scraper.batches, 1)
	assert.Len(t, scraper.batches[0], 3)

	var errorEntries int
	for _, entry := range p.Logger().Entries() {
		if entry.Stage == "search" && entry.Status == core.LogError {
			errorEntries++
			assert.Equal(t, "engine timeout", entry.Data["error_message"])
		}
	}
	assert.Equal(t, 1, errorEntries, "failed query should be logged")

	// Every query failing is still fatal.
	search = &fakeSearch{err: errors.New("search down")}
	p, _ = newTestPipeline(t, search, &fakeScraper{}, WithQueryEnhancer(enhancer))
	_, err = p.Run(context.Background(), "base")
	require.Error(t, err)
	assert.Empty(t, p.History())
}

func TestPipeline_EmptyQuery(t *testing.T) {
	p, _ := newTestPipeline(t, &fakeSearch{}, &fakeScraper{})
	_, err := p.Run(context.Background(), "   ")
	assert.Error(t, err)
}

func TestPipeline_StageLogging(t *testing.T) {
	search := &fakeSearch{hits: threeHits()}
	p, _ := newTestPipeline(t, search, &fakeScraper{})

	_, err := p.Run(context.Background(), "q")
	require.NoError(t, err)

	stages := make(map[string]bool)
	for _, entry := range p.Logger().Entries() {
		stages[entry.Stage] = true
	}
	for _, want := range []string{
		"pipeline_start", "search", "url_extraction", "scraping",
		"chunking", "embedding", "retrieval", "context_building",
		"response_generation", "pipeline_complete",
	} {
		assert.True(t, stages[want], "missing stage %q", want)
	}
}
