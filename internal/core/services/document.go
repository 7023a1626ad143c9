package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/harvora/context-core/internal/core/domain"
	"github.com/harvora/context-core/internal/core/ports/driven"
	"github.com/harvora/context-core/internal/core/ports/driving"
)

// Ensure documentService implements DocumentService
var _ driving.DocumentService = (*documentService)(nil)

// documentService owns the upload side of the document lifecycle. It writes
// the file to the spool directory shared with the worker, inserts the QUEUED
// record and enqueues the ingestion job.
type documentService struct {
	documents driven.DocumentStore
	index     driven.VectorIndex
	queue     driven.JobQueue
	spoolDir  string
	logger    *slog.Logger
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(
	documents driven.DocumentStore,
	index driven.VectorIndex,
	queue driven.JobQueue,
	spoolDir string,
	logger *slog.Logger,
) driving.DocumentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentService{
		documents: documents,
		index:     index,
		queue:     queue,
		spoolDir:  spoolDir,
		logger:    logger,
	}
}

// Upload validates, stores and enqueues a file for ingestion.
// Validation failures are synchronous: no record or job is created.
func (s *documentService) Upload(ctx context.Context, req driving.UploadRequest) (*driving.UploadResult, error) {
	if err := domain.ValidateUpload(req.MimeType, int64(len(req.Data))); err != nil {
		return nil, err
	}

	docID := uuid.NewString()
	tempPath := filepath.Join(s.spoolDir, docID+filepath.Ext(req.Filename))

	if err := os.WriteFile(tempPath, req.Data, 0o600); err != nil {
		return nil, fmt.Errorf("write spool file: %w", err)
	}

	doc := domain.NewDocument(docID, req.Filename, req.MimeType, int64(len(req.Data)), tempPath)
	doc.Metadata = req.Metadata
	if err := s.documents.Insert(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	job := domain.NewIngestionJob(docID, tempPath, req.Filename, req.MimeType, doc.CreatedAt)
	if err := s.queue.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("enqueue ingestion job: %w", err)
	}

	if err := s.documents.SetJobID(ctx, docID, job.ID); err != nil {
		// The job is already durable; losing the back-reference is not fatal.
		s.logger.Warn("failed to record job id", "doc_id", docID, "job_id", job.ID, "error", err)
	}

	s.logger.Info("document queued", "doc_id", docID, "job_id", job.ID, "filename", req.Filename)

	return &driving.UploadResult{
		DocID:  docID,
		JobID:  job.ID,
		Status: domain.DocumentStatusQueued,
	}, nil
}

// Get returns a document record.
func (s *documentService) Get(ctx context.Context, docID string) (*domain.Document, error) {
	return s.documents.FindByID(ctx, docID)
}

// List returns all documents, newest first.
func (s *documentService) List(ctx context.Context) ([]*domain.Document, error) {
	return s.documents.ListAll(ctx)
}

// Delete removes the document record and all of its chunks.
func (s *documentService) Delete(ctx context.Context, docID string) error {
	doc, err := s.documents.FindByID(ctx, docID)
	if err != nil {
		return err
	}

	if err := s.index.DeleteByDocID(ctx, docID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}

	if err := s.documents.DeleteByID(ctx, docID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if doc.StoragePath != "" {
		if err := os.Remove(doc.StoragePath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove spool file", "path", doc.StoragePath, "error", err)
		}
	}

	s.logger.Info("document deleted", "doc_id", docID)
	return nil
}

// Reindex re-enqueues an existing document with the force flag set. The
// source file must still be present in the spool directory.
func (s *documentService) Reindex(ctx context.Context, docID string) (*driving.UploadResult, error) {
	doc, err := s.documents.FindByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(doc.StoragePath); err != nil {
		return nil, fmt.Errorf("source file unavailable for reindex: %w", err)
	}

	job := domain.NewIngestionJob(docID, doc.StoragePath, doc.Filename, doc.MimeType, time.Now().UTC())
	job.Force = true
	if err := s.queue.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("enqueue reindex job: %w", err)
	}

	if err := s.documents.SetJobID(ctx, docID, job.ID); err != nil {
		s.logger.Warn("failed to record job id", "doc_id", docID, "job_id", job.ID, "error", err)
	}

	return &driving.UploadResult{
		DocID:  docID,
		JobID:  job.ID,
		Status: doc.Status,
	}, nil
}
