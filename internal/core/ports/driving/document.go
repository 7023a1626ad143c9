package driving

import (
	"context"

	"github.com/harvora/context-core/internal/core/domain"
)

// UploadRequest carries a validated file from the transport layer.
type UploadRequest struct {
	Filename string
	MimeType string
	Data     []byte
	// Metadata holds optional domain attributes (region, certifications,
	// primary crops) attached to every chunk of the document.
	Metadata map[string]string
}

// UploadResult is returned once the document is durably queued.
type UploadResult struct {
	DocID  string                `json:"doc_id"`
	JobID  string                `json:"job_id"`
	Status domain.DocumentStatus `json:"status"`
}

// DocumentService exposes the document lifecycle to transports.
type DocumentService interface {
	// Upload validates, stores and enqueues a file for ingestion.
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)

	// Get returns a document record.
	Get(ctx context.Context, docID string) (*domain.Document, error)

	// List returns all documents, newest first.
	List(ctx context.Context) ([]*domain.Document, error)

	// Delete removes a document record and all of its chunks from the
	// vector index.
	Delete(ctx context.Context, docID string) error

	// Reindex re-enqueues an existing document with the force flag set,
	// bypassing the no-op redelivery guard.
	Reindex(ctx context.Context, docID string) (*UploadResult, error)
}
