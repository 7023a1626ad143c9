package services

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvora/context-core/internal/core/domain"
	"github.com/harvora/context-core/internal/core/ports/driven/mocks"
	"github.com/harvora/context-core/internal/core/ports/driving"
)

type documentFixture struct {
	service   driving.DocumentService
	documents *mocks.MockDocumentStore
	index     *mocks.MockVectorIndex
	queue     *mocks.MockJobQueue
	spoolDir  string
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()

	documents := mocks.NewMockDocumentStore()
	index := mocks.NewMockVectorIndex()
	queue := mocks.NewMockJobQueue()
	spoolDir := t.TempDir()

	return &documentFixture{
		service:   NewDocumentService(documents, index, queue, spoolDir, nil),
		documents: documents,
		index:     index,
		queue:     queue,
		spoolDir:  spoolDir,
	}
}

func pdfUpload(data []byte) driving.UploadRequest {
	return driving.UploadRequest{
		Filename: "handbook.pdf",
		MimeType: domain.MIMETypePDF,
		Data:     data,
	}
}

func TestUpload_QueuesDocumentAndJob(t *testing.T) {
	f := newDocumentFixture(t)

	res, err := f.service.Upload(context.Background(), pdfUpload([]byte("%PDF-1.4 content")))
	require.NoError(t, err)
	assert.NotEmpty(t, res.DocID)
	assert.NotEmpty(t, res.JobID)
	assert.Equal(t, domain.DocumentStatusQueued, res.Status)

	doc, err := f.documents.FindByID(context.Background(), res.DocID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusQueued, doc.Status)
	assert.Equal(t, res.JobID, doc.JobID)

	job := f.queue.LastEnqueued()
	require.NotNil(t, job)
	assert.Equal(t, res.DocID, job.DocID)
	assert.False(t, job.Force)

	// The spooled file holds the uploaded bytes.
	data, err := os.ReadFile(job.FilePath)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 content"), data)
}

func TestUpload_RejectsUnsupportedMIMEType(t *testing.T) {
	f := newDocumentFixture(t)

	_, err := f.service.Upload(context.Background(), driving.UploadRequest{
		Filename: "notes.txt",
		MimeType: "text/plain",
		Data:     []byte("hello"),
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedMIMEType)
	assert.Equal(t, 0, f.queue.PendingLen())
}

func TestUpload_RejectsOversizedFile(t *testing.T) {
	f := newDocumentFixture(t)

	_, err := f.service.Upload(context.Background(), pdfUpload(make([]byte, domain.MaxUploadSize+1)))
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	assert.Equal(t, 0, f.queue.PendingLen())
}

func TestUpload_EnqueueFailureSurfaces(t *testing.T) {
	f := newDocumentFixture(t)
	f.queue.SetFailEnqueue(errors.New("queue down"))

	_, err := f.service.Upload(context.Background(), pdfUpload([]byte("data")))
	assert.Error(t, err)
}

func TestDelete_RemovesDocumentAndChunks(t *testing.T) {
	f := newDocumentFixture(t)

	res, err := f.service.Upload(context.Background(), pdfUpload([]byte("data")))
	require.NoError(t, err)

	require.NoError(t, f.index.Upsert(context.Background(), []*domain.ChunkRecord{
		{ID: domain.ChunkID(res.DocID, 0), DocID: res.DocID, Content: "chunk"},
		{ID: domain.ChunkID(res.DocID, 1), DocID: res.DocID, Content: "chunk"},
		{ID: domain.ChunkID("other", 0), DocID: "other", Content: "keep"},
	}))

	require.NoError(t, f.service.Delete(context.Background(), res.DocID))

	_, err = f.documents.FindByID(context.Background(), res.DocID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, f.index.CountByDoc(res.DocID))
	assert.Equal(t, 1, f.index.Count(), "unrelated chunks survive")
}

func TestDelete_UnknownDocument(t *testing.T) {
	f := newDocumentFixture(t)
	err := f.service.Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReindex_EnqueuesForceJob(t *testing.T) {
	f := newDocumentFixture(t)

	res, err := f.service.Upload(context.Background(), pdfUpload([]byte("data")))
	require.NoError(t, err)

	res2, err := f.service.Reindex(context.Background(), res.DocID)
	require.NoError(t, err)
	assert.Equal(t, res.DocID, res2.DocID)
	assert.NotEqual(t, res.JobID, res2.JobID)

	job := f.queue.LastEnqueued()
	require.NotNil(t, job)
	assert.True(t, job.Force)
	assert.Equal(t, res.DocID, job.DocID)
}

func TestReindex_FailsWhenSourceFileGone(t *testing.T) {
	f := newDocumentFixture(t)

	res, err := f.service.Upload(context.Background(), pdfUpload([]byte("data")))
	require.NoError(t, err)

	doc, err := f.documents.FindByID(context.Background(), res.DocID)
	require.NoError(t, err)
	require.NoError(t, os.Remove(doc.StoragePath))

	_, err = f.service.Reindex(context.Background(), res.DocID)
	assert.Error(t, err)
}

func TestList_NewestFirst(t *testing.T) {
	f := newDocumentFixture(t)

	first, err := f.service.Upload(context.Background(), pdfUpload([]byte("a")))
	require.NoError(t, err)
	second, err := f.service.Upload(context.Background(), pdfUpload([]byte("b")))
	require.NoError(t, err)

	docs, err := f.service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	ids := []string{docs[0].DocID, docs[1].DocID}
	assert.Contains(t, ids, first.DocID)
	assert.Contains(t, ids, second.DocID)
}
