package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/harvora/context-core/internal/core/domain"
)

// MockVectorIndex is a mock implementation of VectorIndex for testing.
// Similarity search scores by naive term overlap, which is enough to
// exercise ranking and the k cutoff.
type MockVectorIndex struct {
	mu      sync.RWMutex
	records map[string]*domain.ChunkRecord

	failUpsert error
	failSearch error
}

// NewMockVectorIndex creates a new MockVectorIndex
func NewMockVectorIndex() *MockVectorIndex {
	return &MockVectorIndex{
		records: make(map[string]*domain.ChunkRecord),
	}
}

func (m *MockVectorIndex) Upsert(ctx context.Context, records []*domain.ChunkRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpsert != nil {
		return m.failUpsert
	}
	for _, rec := range records {
		cp := *rec
		m.records[rec.ID] = &cp
	}
	return nil
}

func (m *MockVectorIndex) SimilaritySearch(ctx context.Context, query string, k int) ([]*domain.RankedChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failSearch != nil {
		return nil, m.failSearch
	}

	terms := strings.Fields(strings.ToLower(query))
	var ranked []*domain.RankedChunk
	for _, rec := range m.records {
		content := strings.ToLower(rec.Content)
		score := 0.0
		for _, t := range terms {
			if strings.Contains(content, t) {
				score++
			}
		}
		ranked = append(ranked, &domain.RankedChunk{
			ID:      rec.ID,
			DocID:   rec.DocID,
			Content: rec.Content,
			Source:  rec.Metadata.OriginalName,
			Score:   score,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID < ranked[j].ID
	})

	if k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked, nil
}

func (m *MockVectorIndex) DeleteByDocID(ctx context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, rec := range m.records {
		if rec.DocID == docID {
			delete(m.records, id)
		}
	}
	return nil
}

func (m *MockVectorIndex) Ping(ctx context.Context) error {
	return nil
}

// Helper methods for testing

func (m *MockVectorIndex) SetFailUpsert(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failUpsert = err
}

func (m *MockVectorIndex) SetFailSearch(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSearch = err
}

func (m *MockVectorIndex) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *MockVectorIndex) CountByDoc(docID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, rec := range m.records {
		if rec.DocID == docID {
			n++
		}
	}
	return n
}

func (m *MockVectorIndex) Record(id string) *domain.ChunkRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records[id]
}
