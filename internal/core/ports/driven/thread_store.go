package driven

import (
	"context"

	"github.com/harvora/context-core/internal/core/domain"
)

// ThreadStore persists conversation memory per thread (PostgreSQL).
// The durable history always keeps every message; prompt-side trimming
// never shortens it.
type ThreadStore interface {
	// Messages returns the full ordered history of a thread.
	// A thread that does not exist yet yields an empty slice.
	Messages(ctx context.Context, threadID string) ([]domain.Message, error)

	// Append adds messages to the end of a thread in one transaction.
	// The thread is created on first append.
	Append(ctx context.Context, threadID string, messages ...domain.Message) error

	// Delete removes a thread and its history.
	Delete(ctx context.Context, threadID string) error
}
