package mock

import "context"

// MockQueryEnhancer is a test double for ai.QueryEnhancer.
type MockQueryEnhancer struct {
	// EnhanceFunc is called by Enhance if set.
	// If nil, the original query is returned unchanged.
	EnhanceFunc func(ctx context.Context, query string) ([]string, error)

	callCount int
}

// NewMockQueryEnhancer creates a mock enhancer that echoes the input query.
func NewMockQueryEnhancer() *MockQueryEnhancer {
	return &MockQueryEnhancer{}
}

// Enhance returns the injected queries or echoes the original query.
func (m *MockQueryEnhancer) Enhance(ctx context.Context, query string) ([]string, error) {
	m.callCount++

	if m.EnhanceFunc != nil {
		return m.EnhanceFunc(ctx, query)
	}
	return []string{query}, nil
}

// CallCount returns the number of times Enhance was called.
func (m *MockQueryEnhancer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockQueryEnhancer) Reset() {
	m.callCount = 0
	m.EnhanceFunc = nil
}
