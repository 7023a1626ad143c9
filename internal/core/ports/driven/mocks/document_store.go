package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/harvora/context-core/internal/core/domain"
)

// MockDocumentStore is a mock implementation of DocumentStore for testing
type MockDocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*domain.Document

	failClaim error
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		documents: make(map[string]*domain.Document),
	}
}

func (m *MockDocumentStore) Insert(ctx context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[doc.DocID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *doc
	m.documents[doc.DocID] = &cp
	return nil
}

func (m *MockDocumentStore) UpdateStatus(ctx context.Context, docID string, status domain.DocumentStatus, errText string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[docID]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Status = status
	doc.Error = errText
	return nil
}

func (m *MockDocumentStore) SetJobID(ctx context.Context, docID, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[docID]
	if !ok {
		return domain.ErrNotFound
	}
	doc.JobID = jobID
	return nil
}

func (m *MockDocumentStore) ClaimProcessing(ctx context.Context, docID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failClaim != nil {
		return false, m.failClaim
	}
	doc, ok := m.documents[docID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if doc.Status != domain.DocumentStatusQueued && doc.Status != domain.DocumentStatusFailed {
		return false, nil
	}
	doc.Status = domain.DocumentStatusProcessing
	doc.Error = ""
	return true, nil
}

func (m *MockDocumentStore) FindByID(ctx context.Context, docID string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[docID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (m *MockDocumentStore) DeleteByID(ctx context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[docID]; !ok {
		return domain.ErrNotFound
	}
	delete(m.documents, docID)
	return nil
}

func (m *MockDocumentStore) ListAll(ctx context.Context) ([]*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := make([]*domain.Document, 0, len(m.documents))
	for _, doc := range m.documents {
		cp := *doc
		docs = append(docs, &cp)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

func (m *MockDocumentStore) Ping(ctx context.Context) error {
	return nil
}

// Helper methods for testing

func (m *MockDocumentStore) SetFailClaim(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failClaim = err
}

func (m *MockDocumentStore) Status(docID string) domain.DocumentStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if doc, ok := m.documents[docID]; ok {
		return doc.Status
	}
	return ""
}
