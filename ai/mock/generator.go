package mock

import (
	"context"

	"github.com/poiesic/ragpipe/ai"
	"github.com/poiesic/ragpipe/core"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, a canned response is returned.
	GenerateFunc func(ctx context.Context, messages []core.Message, opts ...ai.GenerateOption) (string, error)

	// Response is the canned completion returned when GenerateFunc is nil.
	Response string

	callCount    int
	lastMessages []core.Message
}

// NewMockGenerator creates a mock generator returning a fixed response.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{Response: "mock completion"}
}

// Generate returns the injected or canned completion and records the call.
func (m *MockGenerator) Generate(ctx context.Context, messages []core.Message, opts ...ai.GenerateOption) (string, error) {
	m.callCount++
	m.lastMessages = messages

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, messages, opts...)
	}
	return m.Response, nil
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// LastMessages returns the message sequence from the most recent call.
func (m *MockGenerator) LastMessages() []core.Message {
	return m.lastMessages
}

// Reset clears the call state and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.lastMessages = nil
	m.GenerateFunc = nil
}
