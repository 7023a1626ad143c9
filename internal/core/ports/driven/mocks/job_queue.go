package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/harvora/context-core/internal/core/domain"
	"github.com/harvora/context-core/internal/core/ports/driven"
)

// MockJobQueue is an in-memory mock implementation of JobQueue for testing
type MockJobQueue struct {
	mu      sync.Mutex
	pending []*domain.IngestionJob
	jobs    map[string]*domain.IngestionJob
	acked   []string
	nacked  []string

	failEnqueue error
}

// NewMockJobQueue creates a new MockJobQueue
func NewMockJobQueue() *MockJobQueue {
	return &MockJobQueue{
		jobs: make(map[string]*domain.IngestionJob),
	}
}

func (m *MockJobQueue) Enqueue(ctx context.Context, job *domain.IngestionJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failEnqueue != nil {
		return m.failEnqueue
	}
	cp := *job
	m.pending = append(m.pending, &cp)
	m.jobs[job.ID] = &cp
	return nil
}

func (m *MockJobQueue) Dequeue(ctx context.Context) (*domain.IngestionJob, error) {
	return m.DequeueWithTimeout(ctx, 0)
}

func (m *MockJobQueue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.IngestionJob, error) {
	m.mu.Lock()
	if len(m.pending) == 0 {
		m.mu.Unlock()
		// Simulate a short blocking wait so polling loops don't spin hot.
		if timeout > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(10 * time.Millisecond):
			}
		}
		return nil, nil
	}
	defer m.mu.Unlock()
	job := m.pending[0]
	m.pending = m.pending[1:]
	cp := *job
	return &cp, nil
}

func (m *MockJobQueue) Ack(ctx context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, jobID)
	return nil
}

func (m *MockJobQueue) Nack(ctx context.Context, jobID string, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nacked = append(m.nacked, jobID)
	if job, ok := m.jobs[jobID]; ok && job.CanRetry() {
		job.Retry(reason)
		cp := *job
		m.pending = append(m.pending, &cp)
	}
	return nil
}

func (m *MockJobQueue) GetJob(ctx context.Context, jobID string) (*domain.IngestionJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (m *MockJobQueue) Stats(ctx context.Context) (*driven.QueueStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &driven.QueueStats{
		PendingCount:   int64(len(m.pending)),
		CompletedCount: int64(len(m.acked)),
		FailedCount:    int64(len(m.nacked)),
	}, nil
}

func (m *MockJobQueue) Ping(ctx context.Context) error {
	return nil
}

func (m *MockJobQueue) Close() error {
	return nil
}

// Helper methods for testing

func (m *MockJobQueue) SetFailEnqueue(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failEnqueue = err
}

func (m *MockJobQueue) PendingLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

func (m *MockJobQueue) LastEnqueued() *domain.IngestionJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return nil
	}
	cp := *m.pending[len(m.pending)-1]
	return &cp
}
