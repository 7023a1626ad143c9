package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvora/context-core/internal/core/domain"
)

func setupQueue(t *testing.T) (*Queue, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	q, err := NewQueue(client, "test-worker")
	require.NoError(t, err)
	return q, client
}

func testJob() *domain.IngestionJob {
	return domain.NewIngestionJob("doc-1", "/tmp/doc-1.pdf", "handbook.pdf", "application/pdf", time.Now().UTC())
}

func TestQueue_EnqueueDequeueAck(t *testing.T) {
	q, _ := setupQueue(t)
	ctx := context.Background()

	job := testJob()
	require.NoError(t, q.Enqueue(ctx, job))

	got, err := q.DequeueWithTimeout(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, "doc-1", got.DocID)
	assert.Equal(t, domain.JobStatusProcessing, got.Status)
	assert.Equal(t, 1, got.Attempts)

	require.NoError(t, q.Ack(ctx, got.ID))

	stored, err := q.GetJob(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, stored.Status)

	// Nothing left to deliver.
	next, err := q.DequeueWithTimeout(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestQueue_EmptyDequeueReturnsNil(t *testing.T) {
	q, _ := setupQueue(t)

	got, err := q.DequeueWithTimeout(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestQueue_NackSchedulesRetryWithBackoff(t *testing.T) {
	q, client := setupQueue(t)
	ctx := context.Background()

	job := testJob()
	require.NoError(t, q.Enqueue(ctx, job))

	got, err := q.DequeueWithTimeout(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.NoError(t, q.Nack(ctx, got.ID, "embedding provider unavailable"))

	stored, err := q.GetJob(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusPending, stored.Status)
	assert.Equal(t, "embedding provider unavailable", stored.Error)
	assert.True(t, stored.ScheduledFor.After(time.Now()), "retry is delayed")

	// The retry sits in the scheduled set until due.
	count, err := client.ZCard(ctx, scheduledJobs).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestQueue_ScheduledJobPromotedWhenDue(t *testing.T) {
	q, client := setupQueue(t)
	ctx := context.Background()

	job := testJob()
	require.NoError(t, q.Enqueue(ctx, job))

	got, err := q.DequeueWithTimeout(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NoError(t, q.Nack(ctx, got.ID, "transient failure"))

	// Backdate the scheduled entry so the retry is due now.
	require.NoError(t, client.ZAdd(ctx, scheduledJobs, redis.Z{
		Score:  float64(time.Now().Add(-time.Minute).Unix()),
		Member: job.ID,
	}).Err())

	redelivered, err := q.DequeueWithTimeout(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, redelivered)
	assert.Equal(t, job.ID, redelivered.ID)
	assert.Equal(t, 2, redelivered.Attempts)
}

func TestQueue_NackExhaustedDeadLetters(t *testing.T) {
	q, client := setupQueue(t)
	ctx := context.Background()

	job := testJob()
	job.MaxAttempts = 1
	require.NoError(t, q.Enqueue(ctx, job))

	got, err := q.DequeueWithTimeout(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.NoError(t, q.Nack(ctx, got.ID, "permanent failure"))

	stored, err := q.GetJob(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, stored.Status)
	assert.Equal(t, "permanent failure", stored.Error)

	// Dead-lettered jobs are not rescheduled.
	count, err := client.ZCard(ctx, scheduledJobs).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestQueue_DelayedEnqueueGoesToScheduledSet(t *testing.T) {
	q, client := setupQueue(t)
	ctx := context.Background()

	job := testJob()
	job.ScheduledFor = time.Now().Add(time.Hour)
	require.NoError(t, q.Enqueue(ctx, job))

	count, err := client.ZCard(ctx, scheduledJobs).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := q.DequeueWithTimeout(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got, "job is not due yet")
}

func TestQueue_GetJobNotFound(t *testing.T) {
	q, _ := setupQueue(t)

	_, err := q.GetJob(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQueue_Stats(t *testing.T) {
	q, _ := setupQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, testJob()))

	delayed := testJob()
	delayed.ScheduledFor = time.Now().Add(time.Hour)
	require.NoError(t, q.Enqueue(ctx, delayed))

	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.PendingCount)
}
