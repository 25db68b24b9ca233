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
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/net/html"
)

const (
	// StrategyHTTP identifies results produced by the plain HTTP scraper.
	StrategyHTTP = "http"

	defaultUserAgent   = "Mozilla/5.0 (compatible; ragpipe/1.0)"
	defaultTimeout     = 10 * time.Second
	defaultConcurrency = 5

	// maxBodyBytes bounds how much of a response we read. Pages past this
	// size are truncated, not rejected.
	maxBodyBytes = 4 << 20
)

// HTTPScraper fetches pages over plain HTTP and extracts their visible
// text. Fetches within a batch run concurrently through a bounded pool.
type HTTPScraper struct {
	client    *http.Client
	pool      *ants.Pool
	userAgent string
	logger    *slog.Logger
}

// HTTPOption configures an HTTPScraper.
type HTTPOption func(*HTTPScraper) error

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(agent string) HTTPOption {
	return func(s *HTTPScraper) error {
		s.userAgent = agent
		return nil
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPScraper) error {
		s.client = client
		return nil
	}
}

// WithConcurrency sets the maximum number of in-flight fetches.
// Default is 5.
func WithConcurrency(n int) HTTPOption {
	return func(s *HTTPScraper) error {
		if n < 1 {
			n = 1
		}
		if s.pool != nil {
			s.pool.Release()
		}
		pool, err := ants.NewPool(n)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// NewHTTPScraper creates a scraper with a bounded worker pool.
func NewHTTPScraper(opts ...HTTPOption) (*HTTPScraper, error) {
	pool, err := ants.NewPool(defaultConcurrency)
	if err != nil {
		return nil, err
	}

	s := &HTTPScraper{
		client:    &http.Client{Timeout: defaultTimeout},
		pool:      pool,
		userAgent: defaultUserAgent,
		logger:    slog.Default().With("component", "scraper"),
	}

	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			s.Release()
			return nil, optErr
		}
	}
	return s, nil
}

// Release frees the worker pool. The scraper must not be used afterwards.
func (s *HTTPScraper) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// ScrapeMany implements Scraper.
func (s *HTTPScraper) ScrapeMany(ctx context.Context, urls []string) (map[string]Result, error) {
	results := make(map[string]Result, len(urls))
	if len(urls) == 0 {
		return results, nil
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, u := range urls {
		u := u
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			res := s.scrapeOne(ctx, u)
			mu.Lock()
			results[u] = res
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			results[u] = Result{Success: false, Strategy: StrategyHTTP, Err: err.Error()}
			mu.Unlock()
		}
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func (s *HTTPScraper) scrapeOne(ctx context.Context, url string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{Success: false, Strategy: StrategyHTTP, Err: err.Error()}
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("fetch failed", "url", url, "error", err)
		return Result{Success: false, Strategy: StrategyHTTP, Err: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{
			Success:  false,
			Strategy: StrategyHTTP,
			Err:      fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Result{Success: false, Strategy: StrategyHTTP, Err: err.Error()}
	}

	text := ExtractText(string(body))
	if strings.TrimSpace(text) == "" {
		return Result{Success: false, Strategy: StrategyHTTP, Err: "no extractable text"}
	}

	s.logger.Debug("scraped", "url", url, "chars", len(text))
	return Result{Success: true, Content: text, Strategy: StrategyHTTP}
}

// skippedElements are HTML elements whose text is never page content.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"nav":      true,
	"header":   true,
	"footer":   true,
	"iframe":   true,
}

// ExtractText returns the visible text of an HTML document, with block
// boundaries collapsed to single newlines. Malformed HTML is handled
// leniently by the parser, so this never fails; unparseable input just
// yields its raw text.
func ExtractText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if sb.Len() > 0 {
					sb.WriteByte('\n')
				}
				sb.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return sb.String()
}
