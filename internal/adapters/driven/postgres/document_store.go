package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harvora/context-core/internal/core/domain"
	"github.com/harvora/context-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implements driven.DocumentStore using PostgreSQL
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

const documentColumns = `doc_id, filename, mime_type, size_bytes, storage_path, status, job_id, error, metadata, created_at, updated_at`

// Insert creates a new document record
func (s *DocumentStore) Insert(ctx context.Context, doc *domain.Document) error {
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO documents (doc_id, filename, mime_type, size_bytes, storage_path, status, job_id, error, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = s.db.ExecContext(ctx, query,
		doc.DocID,
		doc.Filename,
		doc.MimeType,
		doc.SizeBytes,
		doc.StoragePath,
		doc.Status,
		NullString(doc.JobID),
		NullString(doc.Error),
		metadataJSON,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

// UpdateStatus moves a document to the given status. The error column is
// persisted for FAILED and cleared otherwise.
func (s *DocumentStore) UpdateStatus(ctx context.Context, docID string, status domain.DocumentStatus, errText string) error {
	query := `
		UPDATE documents
		SET status = $2, error = $3, updated_at = $4
		WHERE doc_id = $1
	`

	errVal := sql.NullString{}
	if status == domain.DocumentStatusFailed {
		errVal = NullString(errText)
	}

	res, err := s.db.ExecContext(ctx, query, docID, status, errVal, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetJobID records the queue's job id after enqueue
func (s *DocumentStore) SetJobID(ctx context.Context, docID, jobID string) error {
	query := `UPDATE documents SET job_id = $2, updated_at = $3 WHERE doc_id = $1`

	res, err := s.db.ExecContext(ctx, query, docID, jobID, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ClaimProcessing atomically moves a QUEUED or FAILED document to PROCESSING.
// The conditional update is the mutual-exclusion gate between concurrent
// workers: the row count tells the caller whether it won the claim.
func (s *DocumentStore) ClaimProcessing(ctx context.Context, docID string) (bool, error) {
	query := `
		UPDATE documents
		SET status = $2, error = NULL, updated_at = $3
		WHERE doc_id = $1 AND status IN ($4, $5)
	`

	res, err := s.db.ExecContext(ctx, query,
		docID,
		domain.DocumentStatusProcessing,
		time.Now().UTC(),
		domain.DocumentStatusQueued,
		domain.DocumentStatusFailed,
	)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows > 0 {
		return true, nil
	}

	// Distinguish a lost claim from a missing document.
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM documents WHERE doc_id = $1)`, docID).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, domain.ErrNotFound
	}
	return false, nil
}

// FindByID retrieves a document by ID
func (s *DocumentStore) FindByID(ctx context.Context, docID string) (*domain.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE doc_id = $1`, documentColumns)

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, docID))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return doc, err
}

// DeleteByID removes a document record
func (s *DocumentStore) DeleteByID(ctx context.Context, docID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE doc_id = $1`, docID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListAll retrieves every document, newest first
func (s *DocumentStore) ListAll(ctx context.Context) ([]*domain.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents ORDER BY created_at DESC`, documentColumns)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Ping checks if the database is reachable
func (s *DocumentStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var (
		doc          domain.Document
		jobID        sql.NullString
		errText      sql.NullString
		metadataJSON []byte
	)

	err := row.Scan(
		&doc.DocID,
		&doc.Filename,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.StoragePath,
		&doc.Status,
		&jobID,
		&errText,
		&metadataJSON,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.JobID = jobID.String
	doc.Error = errText.String
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("decode document metadata: %w", err)
		}
	}
	return &doc, nil
}

func requireRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
