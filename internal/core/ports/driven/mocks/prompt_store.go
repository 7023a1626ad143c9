package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/harvora/context-core/internal/core/domain"
)

// MockPromptStore is a mock implementation of PromptStore for testing
type MockPromptStore struct {
	mu     sync.RWMutex
	prompt *domain.SystemPrompt

	failSet error
}

// NewMockPromptStore creates a new MockPromptStore
func NewMockPromptStore() *MockPromptStore {
	return &MockPromptStore{}
}

func (m *MockPromptStore) Get(ctx context.Context) (*domain.SystemPrompt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.prompt == nil {
		return nil, domain.ErrNotFound
	}
	cp := *m.prompt
	return &cp, nil
}

func (m *MockPromptStore) Set(ctx context.Context, prompt string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	m.prompt = &domain.SystemPrompt{Prompt: prompt, UpdatedAt: time.Now().UTC()}
	return nil
}

// Helper methods for testing

func (m *MockPromptStore) SetFailSet(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSet = err
}

// MockPromptCache is a mock implementation of PromptCache for testing.
// TTL expiry is not simulated; entries live until invalidated.
type MockPromptCache struct {
	mu     sync.RWMutex
	value  string
	cached bool

	sets        int
	invalidates int
}

// NewMockPromptCache creates a new MockPromptCache
func NewMockPromptCache() *MockPromptCache {
	return &MockPromptCache{}
}

func (m *MockPromptCache) Get(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.cached {
		return "", domain.ErrNotFound
	}
	return m.value, nil
}

func (m *MockPromptCache) Set(ctx context.Context, prompt string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = prompt
	m.cached = true
	m.sets++
	return nil
}

func (m *MockPromptCache) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = ""
	m.cached = false
	m.invalidates++
	return nil
}

// Helper methods for testing

func (m *MockPromptCache) Cached() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cached
}

func (m *MockPromptCache) Sets() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sets
}

func (m *MockPromptCache) Invalidates() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.invalidates
}
