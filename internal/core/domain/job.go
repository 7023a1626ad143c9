package domain

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// GenerateID creates a unique random ID.
func GenerateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// JobStatus represents the current state of a queued ingestion job.
// This is queue bookkeeping, distinct from the document lifecycle.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IngestionJob is one queue entry driving a document through its lifecycle.
// Delivery is at-least-once; the worker must stay idempotent under redelivery
// (chunk ids are deterministic and upserts overwrite, so re-running is safe).
type IngestionJob struct {
	// ID is the queue's own identity for this job, distinct from DocID.
	ID string `json:"id"`

	// Payload fields, flat on the wire.
	DocID        string    `json:"doc_id"`
	FilePath     string    `json:"file_path"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	UploadedAt   time.Time `json:"uploaded_at"`

	// Force bypasses the no-op redelivery guard so an already-indexed
	// document is chunked and embedded again.
	Force bool `json:"force,omitempty"`

	// Delivery metadata maintained by the queue.
	Status      JobStatus `json:"status"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
	Error       string    `json:"error,omitempty"`

	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ScheduledFor time.Time  `json:"scheduled_for"`
}

// NewIngestionJob creates a pending job for a document.
func NewIngestionJob(docID, filePath, originalName, mimeType string, uploadedAt time.Time) *IngestionJob {
	now := time.Now().UTC()
	return &IngestionJob{
		ID:           GenerateID(),
		DocID:        docID,
		FilePath:     filePath,
		OriginalName: originalName,
		MimeType:     mimeType,
		UploadedAt:   uploadedAt,
		Status:       JobStatusPending,
		MaxAttempts:  3,
		CreatedAt:    now,
		UpdatedAt:    now,
		ScheduledFor: now,
	}
}

// CanRetry returns true if the job has attempts left.
func (j *IngestionJob) CanRetry() bool {
	return j.Attempts < j.MaxAttempts
}

// IsReady returns true if the job is due for processing.
func (j *IngestionJob) IsReady() bool {
	return j.Status == JobStatusPending && time.Now().After(j.ScheduledFor)
}

// MarkProcessing records the start of a delivery attempt.
func (j *IngestionJob) MarkProcessing() {
	now := time.Now().UTC()
	j.Status = JobStatusProcessing
	j.StartedAt = &now
	j.UpdatedAt = now
	j.Attempts++
}

// MarkCompleted records successful completion.
func (j *IngestionJob) MarkCompleted() {
	now := time.Now().UTC()
	j.Status = JobStatusCompleted
	j.CompletedAt = &now
	j.UpdatedAt = now
	j.Error = ""
}

// MarkFailed dead-letters the job: attempts are exhausted and it will not
// be re-enqueued.
func (j *IngestionJob) MarkFailed(err string) {
	now := time.Now().UTC()
	j.Status = JobStatusFailed
	j.UpdatedAt = now
	j.Error = err
}

// Retry resets the job for redelivery with exponential backoff.
func (j *IngestionJob) Retry(err string) {
	now := time.Now().UTC()
	j.Status = JobStatusPending
	j.UpdatedAt = now
	j.Error = err

	// Exponential backoff: 2s, 4s, 8s, ... capped at 5 minutes.
	backoff := time.Duration(1<<j.Attempts) * time.Second
	if backoff > 5*time.Minute {
		backoff = 5 * time.Minute
	}
	j.ScheduledFor = now.Add(backoff)
}
