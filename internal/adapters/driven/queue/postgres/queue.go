package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harvora/context-core/internal/core/domain"
	"github.com/harvora/context-core/internal/core/ports/driven"
)

// Ensure Queue implements JobQueue
var _ driven.JobQueue = (*Queue)(nil)

// Queue implements JobQueue using PostgreSQL with SKIP LOCKED.
// This is the fallback queue when Redis is not available.
type Queue struct {
	db *sql.DB
}

// NewQueue creates a new PostgreSQL-backed job queue.
// Assumes the ingestion_jobs table has been created via schema init.
func NewQueue(db *sql.DB) *Queue {
	return &Queue{db: db}
}

const jobColumns = `id, doc_id, file_path, original_name, mime_type, uploaded_at, force,
	   status, attempts, max_attempts, error, created_at, updated_at,
	   started_at, completed_at, scheduled_for`

// Enqueue adds a job to the queue
func (q *Queue) Enqueue(ctx context.Context, job *domain.IngestionJob) error {
	query := `
		INSERT INTO ingestion_jobs (
			id, doc_id, file_path, original_name, mime_type, uploaded_at, force,
			status, attempts, max_attempts, error, created_at, updated_at, scheduled_for
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := q.db.ExecContext(ctx, query,
		job.ID,
		job.DocID,
		job.FilePath,
		job.OriginalName,
		job.MimeType,
		job.UploadedAt,
		job.Force,
		job.Status,
		job.Attempts,
		job.MaxAttempts,
		job.Error,
		job.CreatedAt,
		job.UpdatedAt,
		job.ScheduledFor,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}

	return nil
}

// Dequeue retrieves the next available job using SELECT FOR UPDATE SKIP LOCKED.
// This ensures only one worker gets each job even with multiple workers.
func (q *Queue) Dequeue(ctx context.Context) (*domain.IngestionJob, error) {
	return q.dequeue(ctx, 0)
}

// DequeueWithTimeout retrieves the next job, waiting up to timeout seconds
func (q *Queue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.IngestionJob, error) {
	return q.dequeue(ctx, timeout)
}

func (q *Queue) dequeue(ctx context.Context, timeoutSeconds int) (*domain.IngestionJob, error) {
	// Use a transaction to atomically select and update
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Select next available job with SKIP LOCKED to avoid contention
	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM ingestion_jobs
		WHERE status = $1
		  AND scheduled_for <= NOW()
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`, jobColumns)

	job, err := scanJob(tx.QueryRowContext(ctx, selectQuery, domain.JobStatusPending))
	if err == sql.ErrNoRows {
		// No jobs available
		_ = tx.Rollback()

		// If timeout specified, wait and retry
		if timeoutSeconds > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(timeoutSeconds) * time.Second):
				return q.dequeue(ctx, 0)
			}
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select job: %w", err)
	}

	// Mark job as processing
	now := time.Now().UTC()
	updateQuery := `
		UPDATE ingestion_jobs
		SET status = $1, started_at = $2, updated_at = $3, attempts = attempts + 1
		WHERE id = $4
	`
	_, err = tx.ExecContext(ctx, updateQuery,
		domain.JobStatusProcessing,
		now,
		now,
		job.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update job status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	// Update in-memory job state
	job.Status = domain.JobStatusProcessing
	job.StartedAt = &now
	job.UpdatedAt = now
	job.Attempts++

	return job, nil
}

// Ack marks a job as completed
func (q *Queue) Ack(ctx context.Context, jobID string) error {
	now := time.Now().UTC()
	query := `
		UPDATE ingestion_jobs
		SET status = $1, completed_at = $2, updated_at = $3, error = ''
		WHERE id = $4
	`

	result, err := q.db.ExecContext(ctx, query,
		domain.JobStatusCompleted,
		now,
		now,
		jobID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Nack marks a job as failed, scheduling a retry while attempts remain
func (q *Queue) Nack(ctx context.Context, jobID string, reason string) error {
	// First get the job to check retry count
	job, err := q.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}

	now := time.Now().UTC()

	if job.CanRetry() {
		// Schedule retry with exponential backoff
		backoff := time.Duration(1<<job.Attempts) * time.Second
		if backoff > 5*time.Minute {
			backoff = 5 * time.Minute
		}

		query := `
			UPDATE ingestion_jobs
			SET status = $1, error = $2, updated_at = $3, scheduled_for = $4
			WHERE id = $5
		`
		_, err = q.db.ExecContext(ctx, query,
			domain.JobStatusPending,
			reason,
			now,
			now.Add(backoff),
			jobID,
		)
	} else {
		// Max retries exceeded, dead-letter the job
		query := `
			UPDATE ingestion_jobs
			SET status = $1, error = $2, updated_at = $3
			WHERE id = $4
		`
		_, err = q.db.ExecContext(ctx, query,
			domain.JobStatusFailed,
			reason,
			now,
			jobID,
		)
	}

	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}

	return nil
}

// GetJob retrieves a job by ID
func (q *Queue) GetJob(ctx context.Context, jobID string) (*domain.IngestionJob, error) {
	query := fmt.Sprintf(`SELECT %s FROM ingestion_jobs WHERE id = $1`, jobColumns)

	job, err := scanJob(q.db.QueryRowContext(ctx, query, jobID))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query job: %w", err)
	}
	return job, nil
}

// Stats returns queue statistics
func (q *Queue) Stats(ctx context.Context) (*driven.QueueStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3),
			COUNT(*) FILTER (WHERE status = $4)
		FROM ingestion_jobs
	`

	var stats driven.QueueStats
	err := q.db.QueryRowContext(ctx, query,
		domain.JobStatusPending,
		domain.JobStatusProcessing,
		domain.JobStatusCompleted,
		domain.JobStatusFailed,
	).Scan(&stats.PendingCount, &stats.ProcessingCount, &stats.CompletedCount, &stats.FailedCount)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}

	return &stats, nil
}

// Ping checks if the queue backend is healthy
func (q *Queue) Ping(ctx context.Context) error {
	return q.db.PingContext(ctx)
}

// Close cleans up resources
func (q *Queue) Close() error {
	// Database connection is shared, don't close it here
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.IngestionJob, error) {
	var (
		job         domain.IngestionJob
		errText     sql.NullString
		startedAt   sql.NullTime
		completedAt sql.NullTime
	)

	err := row.Scan(
		&job.ID,
		&job.DocID,
		&job.FilePath,
		&job.OriginalName,
		&job.MimeType,
		&job.UploadedAt,
		&job.Force,
		&job.Status,
		&job.Attempts,
		&job.MaxAttempts,
		&errText,
		&job.CreatedAt,
		&job.UpdatedAt,
		&startedAt,
		&completedAt,
		&job.ScheduledFor,
	)
	if err != nil {
		return nil, err
	}

	job.Error = errText.String
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}

	return &job, nil
}
