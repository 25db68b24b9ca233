package retrieval

import "context"

// MockReranker is a test double for Reranker.
type MockReranker struct {
	// ScoreFunc is called by Score if set. If nil, every document
	// receives a score of 0.5.
	ScoreFunc func(ctx context.Context, query string, documents []string) ([]float64, error)

	callCount int
}

// Score implements Reranker.
func (m *MockReranker) Score(ctx context.Context, query string, documents []string) ([]float64, error) {
	m.callCount++

	if m.ScoreFunc != nil {
		return m.ScoreFunc(ctx, query, documents)
	}

	scores := make([]float64, len(documents))
	for i := range scores {
		scores[i] = 0.5
	}
	return scores, nil
}

// CallCount returns the number of times Score was called.
func (m *MockReranker) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockReranker) Reset() {
	m.callCount = 0
	m.ScoreFunc = nil
}
