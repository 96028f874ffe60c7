package mocks

import (
	"fmt"

	"github.com/acmei/landgrab/internal/dependencies/token"
)

// MockToken is a mock implementation of token.Generator for testing
type MockToken struct {
	// Results is a queue of tokens to return from Generate
	Results []string
	index   int
}

// Ensure MockToken implements Generator
var _ token.Generator = (*MockToken)(nil)

// NewMockToken creates a new MockToken
func NewMockToken() *MockToken {
	return &MockToken{}
}

// Generate returns the next queued token. When the queue is empty it
// falls back to a deterministic sequence so wiring code that generates
// more tokens than a test queued still gets distinct values.
func (m *MockToken) Generate() string {
	if m.index < len(m.Results) {
		result := m.Results[m.index]
		m.index++
		return result
	}
	m.index++
	return fmt.Sprintf("token-%d", m.index)
}

// Queue adds tokens to the result queue
func (m *MockToken) Queue(tokens ...string) {
	m.Results = append(m.Results, tokens...)
}

// Reset clears all queued tokens
func (m *MockToken) Reset() {
	m.Results = nil
	m.index = 0
}
