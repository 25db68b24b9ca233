package mock

import (
	"github.com/poiesic/ragpipe/ai"
)

// MockProvider bundles the mock embedder, generator, and enhancer behind
// the ai.Provider interface for tests that exercise a full pipeline.
type MockProvider struct {
	embedder  *MockEmbedder
	generator *MockGenerator
	enhancer  *MockQueryEnhancer
}

var _ ai.Provider = (*MockProvider)(nil)

// NewMockProvider creates a provider with default mock behavior.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		embedder:  NewMockEmbedder(),
		generator: NewMockGenerator(),
		enhancer:  NewMockQueryEnhancer(),
	}
}

// Embedder returns the mock embedder as an ai.Embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Generator returns the mock generator as an ai.Generator.
func (p *MockProvider) Generator() ai.Generator {
	return p.generator
}

// QueryEnhancer returns the mock enhancer as an ai.QueryEnhancer.
func (p *MockProvider) QueryEnhancer() ai.QueryEnhancer {
	return p.enhancer
}

// GetMockEmbedder returns the underlying mock embedder for test configuration.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockGenerator returns the underlying mock generator for test configuration.
func (p *MockProvider) GetMockGenerator() *MockGenerator {
	return p.generator
}

// GetMockEnhancer returns the underlying mock enhancer for test configuration.
func (p *MockProvider) GetMockEnhancer() *MockQueryEnhancer {
	return p.enhancer
}

// Close is a no-op for mocks.
func (p *MockProvider) Close() error {
	return nil
}

// Reset restores all mocks to their default state.
func (p *MockProvider) Reset() {
	p.embedder.Reset()
	p.generator.Reset()
	p.enhancer.Reset()
}
