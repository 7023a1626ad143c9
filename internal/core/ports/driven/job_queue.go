package driven

import (
	"context"

	"github.com/harvora/context-core/internal/core/domain"
)

// JobQueue handles durable ingestion job delivery.
// Implementations can use Redis (preferred) or Postgres (fallback).
// Delivery is at-least-once: a job that is neither acked nor nacked is
// eventually redelivered to another consumer.
type JobQueue interface {
	// Enqueue adds a job to the queue and returns once it is durable.
	Enqueue(ctx context.Context, job *domain.IngestionJob) error

	// Dequeue retrieves the next available job, blocking until one is
	// available or the context is cancelled.
	Dequeue(ctx context.Context) (*domain.IngestionJob, error)

	// DequeueWithTimeout retrieves the next available job, waiting up to
	// timeout seconds. Returns nil, nil if none became available.
	DequeueWithTimeout(ctx context.Context, timeout int) (*domain.IngestionJob, error)

	// Ack acknowledges successful completion of a job.
	Ack(ctx context.Context, jobID string) error

	// Nack reports a failed delivery. The job is re-enqueued with backoff
	// until MaxAttempts is exhausted, then dead-lettered.
	Nack(ctx context.Context, jobID string, reason string) error

	// GetJob retrieves a job by id (for status checking).
	GetJob(ctx context.Context, jobID string) (*domain.IngestionJob, error)

	// Stats returns queue statistics.
	Stats(ctx context.Context) (*QueueStats, error)

	// Ping checks if the queue backend is healthy.
	Ping(ctx context.Context) error

	// Close cleans up resources.
	Close() error
}

// QueueStats contains queue statistics
type QueueStats struct {
	PendingCount    int64 `json:"pending_count"`
	ProcessingCount int64 `json:"processing_count"`
	CompletedCount  int64 `json:"completed_count"`
	FailedCount     int64 `json:"failed_count"`
}
