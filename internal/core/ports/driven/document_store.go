package driven

import (
	"context"

	"github.com/harvora/context-core/internal/core/domain"
)

// DocumentStore handles document metadata persistence (PostgreSQL)
type DocumentStore interface {
	// Insert creates a new document record in the QUEUED state.
	Insert(ctx context.Context, doc *domain.Document) error

	// UpdateStatus moves a document to the given status. The error text is
	// persisted for FAILED and cleared for every other status.
	UpdateStatus(ctx context.Context, docID string, status domain.DocumentStatus, errText string) error

	// SetJobID records the queue's job id after enqueue.
	SetJobID(ctx context.Context, docID, jobID string) error

	// ClaimProcessing atomically moves a QUEUED or FAILED document to
	// PROCESSING via a conditional update. It returns false when another
	// worker already holds the document or it is already indexed, which
	// the caller treats as a no-op redelivery.
	ClaimProcessing(ctx context.Context, docID string) (bool, error)

	// FindByID retrieves a document by its id.
	// Returns domain.ErrNotFound if no such document exists.
	FindByID(ctx context.Context, docID string) (*domain.Document, error)

	// DeleteByID removes a document record.
	DeleteByID(ctx context.Context, docID string) error

	// ListAll retrieves every document, newest first.
	ListAll(ctx context.Context) ([]*domain.Document, error)

	// Ping checks if the backing store is healthy.
	Ping(ctx context.Context) error
}
