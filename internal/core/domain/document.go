package domain

import "time"

// DocumentStatus represents the lifecycle state of an uploaded document.
// Transitions only move forward: QUEUED -> PROCESSING -> INDEXED | FAILED.
// A FAILED document may re-enter PROCESSING while the queue retries its job.
type DocumentStatus string

const (
	DocumentStatusQueued     DocumentStatus = "QUEUED"
	DocumentStatusProcessing DocumentStatus = "PROCESSING"
	DocumentStatusIndexed    DocumentStatus = "INDEXED"
	DocumentStatusFailed     DocumentStatus = "FAILED"
)

// MaxUploadSize is the largest accepted upload in bytes (10MB).
const MaxUploadSize = 10 * 1024 * 1024

// MIME types accepted at the upload boundary.
const (
	MIMETypePDF  = "application/pdf"
	MIMETypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// AllowedMIMETypes is the closed allow-list checked before a Document
// record or job is created.
var AllowedMIMETypes = map[string]bool{
	MIMETypePDF:  true,
	MIMETypeDOCX: true,
}

// Document represents one uploaded file and its indexing state.
// The document worker is the sole writer of Status once the record exists.
type Document struct {
	DocID       string            `json:"doc_id"`
	Filename    string            `json:"filename"`
	MimeType    string            `json:"mime_type"`
	SizeBytes   int64             `json:"size_bytes"`
	StoragePath string            `json:"storage_path,omitempty"` // temp file, removed after indexing
	Status      DocumentStatus    `json:"status"`
	JobID       string            `json:"job_id,omitempty"` // set at enqueue time
	Error       string            `json:"error,omitempty"`  // non-empty iff Status == FAILED
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// IsTerminal reports whether the status is a final state.
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusIndexed || s == DocumentStatusFailed
}

// NewDocument creates a document record in the QUEUED state.
func NewDocument(docID, filename, mimeType string, sizeBytes int64, storagePath string) *Document {
	now := time.Now().UTC()
	return &Document{
		DocID:       docID,
		Filename:    filename,
		MimeType:    mimeType,
		SizeBytes:   sizeBytes,
		StoragePath: storagePath,
		Status:      DocumentStatusQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ValidateUpload checks the upload boundary constraints. It returns
// ErrUnsupportedMIMEType or ErrFileTooLarge; neither results in a
// Document record or a queued job.
func ValidateUpload(mimeType string, sizeBytes int64) error {
	if !AllowedMIMETypes[mimeType] {
		return ErrUnsupportedMIMEType
	}
	if sizeBytes > MaxUploadSize {
		return ErrFileTooLarge
	}
	return nil
}
