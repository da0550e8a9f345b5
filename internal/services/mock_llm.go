package services

import (
	"context"
	"sync"
)

// MockLLMAPI is a mock implementation of LLMService for testing
type MockLLMAPI struct {
	GenerateTextFunc func(ctx context.Context, prompt string) (string, error)
	PingFunc         func(ctx context.Context) error

	// Track calls for testing
	GenerateTextCalls []string
	PingCalls         int

	mu sync.Mutex // protects all fields above
}

// Ensure MockLLMAPI implements LLMService interface
var _ LLMService = (*MockLLMAPI)(nil)

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{
		GenerateTextCalls: make([]string, 0),
	}
}

// GenerateText mocks text generation, recording the prompt.
func (m *MockLLMAPI) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.GenerateTextCalls = append(m.GenerateTextCalls, prompt)
	fn := m.GenerateTextFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt)
	}

	// Default behavior - empty successful response
	return "", nil
}

// Ping mocks the connectivity check.
func (m *MockLLMAPI) Ping(ctx context.Context) error {
	m.mu.Lock()
	m.PingCalls++
	fn := m.PingFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	return nil
}

// CallCount returns the number of GenerateText calls so far.
func (m *MockLLMAPI) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.GenerateTextCalls)
}
