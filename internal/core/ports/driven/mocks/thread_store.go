package mocks

import (
	"context"
	"sync"

	"github.com/harvora/context-core/internal/core/domain"
)

// MockThreadStore is a mock implementation of ThreadStore for testing
type MockThreadStore struct {
	mu      sync.RWMutex
	threads map[string][]domain.Message

	failAppend error
}

// NewMockThreadStore creates a new MockThreadStore
func NewMockThreadStore() *MockThreadStore {
	return &MockThreadStore{
		threads: make(map[string][]domain.Message),
	}
}

func (m *MockThreadStore) Messages(ctx context.Context, threadID string) ([]domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Message{}, m.threads[threadID]...), nil
}

func (m *MockThreadStore) Append(ctx context.Context, threadID string, messages ...domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAppend != nil {
		return m.failAppend
	}
	m.threads[threadID] = append(m.threads[threadID], messages...)
	return nil
}

func (m *MockThreadStore) Delete(ctx context.Context, threadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.threads, threadID)
	return nil
}

// Helper methods for testing

func (m *MockThreadStore) SetFailAppend(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAppend = err
}

func (m *MockThreadStore) Len(threadID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.threads[threadID])
}
