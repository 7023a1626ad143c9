package mocks

import (
	"context"
	"sync"
)

// MockParser is a mock implementation of DocumentParser for testing.
// It returns the raw bytes as text, or a scripted error.
type MockParser struct {
	mu        sync.Mutex
	mimeTypes []string
	failWith  error
}

// NewMockParser creates a new MockParser for the given MIME types
func NewMockParser(mimeTypes ...string) *MockParser {
	return &MockParser{mimeTypes: mimeTypes}
}

func (m *MockParser) Parse(ctx context.Context, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return "", m.failWith
	}
	return string(data), nil
}

func (m *MockParser) MimeTypes() []string {
	return m.mimeTypes
}

// Helper methods for testing

func (m *MockParser) SetFailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}
