package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvora/context-core/internal/core/domain"
	"github.com/harvora/context-core/internal/core/ports/driven/mocks"
	"github.com/harvora/context-core/internal/parsers"
)

const testMIMEType = "text/plain"

type ingestFixture struct {
	ingestor  *Ingestor
	documents *mocks.MockDocumentStore
	index     *mocks.MockVectorIndex
	embedder  *mocks.MockEmbeddingService
	parser    *mocks.MockParser
}

func newIngestFixture(t *testing.T) *ingestFixture {
	t.Helper()

	documents := mocks.NewMockDocumentStore()
	index := mocks.NewMockVectorIndex()
	embedder := mocks.NewMockEmbeddingService()
	parser := mocks.NewMockParser(testMIMEType)

	registry := parsers.NewRegistry()
	registry.Register(parser)

	return &ingestFixture{
		ingestor: NewIngestor(IngestorConfig{
			DocumentStore: documents,
			VectorIndex:   index,
			Embedder:      embedder,
			Parsers:       registry,
		}),
		documents: documents,
		index:     index,
		embedder:  embedder,
		parser:    parser,
	}
}

// queueDocument writes content to a temp file and seeds a QUEUED document
// plus its matching job.
func (f *ingestFixture) queueDocument(t *testing.T, content string) *domain.IngestionJob {
	t.Helper()

	path := filepath.Join(t.TempDir(), "upload.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	doc := domain.NewDocument("doc-1", "report.txt", testMIMEType, int64(len(content)), path)
	doc.Metadata = map[string]string{
		"region":         "willamette valley",
		"certifications": "organic, non-gmo",
		"primary_crops":  "hazelnuts",
	}
	require.NoError(t, f.documents.Insert(context.Background(), doc))

	return domain.NewIngestionJob("doc-1", path, "report.txt", testMIMEType, time.Now().UTC())
}

func TestProcessJob_HappyPath(t *testing.T) {
	f := newIngestFixture(t)
	job := f.queueDocument(t, "alpha beta gamma delta")

	require.NoError(t, f.ingestor.ProcessJob(context.Background(), job))

	assert.Equal(t, domain.DocumentStatusIndexed, f.documents.Status("doc-1"))
	assert.Equal(t, 1, f.index.CountByDoc("doc-1"))

	rec := f.index.Record("doc-1_chunk_0")
	require.NotNil(t, rec)
	assert.Equal(t, "alpha beta gamma delta", rec.Content)
	assert.Equal(t, "report.txt", rec.Metadata.OriginalName)
	assert.Equal(t, "willamette valley", rec.Metadata.Region)
	assert.Equal(t, []string{"organic", "non-gmo"}, rec.Metadata.Certifications)
	assert.Equal(t, []string{"hazelnuts"}, rec.Metadata.PrimaryCrops)

	// Source file is cleaned up after indexing.
	_, err := os.Stat(job.FilePath)
	assert.True(t, os.IsNotExist(err))
}

func TestProcessJob_ChunkCountAndIDs(t *testing.T) {
	f := newIngestFixture(t)
	job := f.queueDocument(t, words(3000))

	require.NoError(t, f.ingestor.ProcessJob(context.Background(), job))

	assert.Equal(t, 7, f.index.CountByDoc("doc-1"))
	for i := 0; i < 7; i++ {
		rec := f.index.Record(domain.ChunkID("doc-1", i))
		require.NotNil(t, rec, "missing chunk %d", i)
		assert.Equal(t, i, rec.ChunkIndex)
	}
}

func TestProcessJob_ParseFailureMarksFailed(t *testing.T) {
	f := newIngestFixture(t)
	job := f.queueDocument(t, "whatever")
	f.parser.SetFailWith(errors.New("corrupt file"))

	err := f.ingestor.ProcessJob(context.Background(), job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt file")

	assert.Equal(t, domain.DocumentStatusFailed, f.documents.Status("doc-1"))
	doc, _ := f.documents.FindByID(context.Background(), "doc-1")
	assert.Contains(t, doc.Error, "corrupt file")
	assert.Equal(t, 0, f.index.Count())
}

func TestProcessJob_EmbedFailureLeavesIndexEmpty(t *testing.T) {
	f := newIngestFixture(t)
	job := f.queueDocument(t, words(3000))
	f.embedder.SetFailNext(true)

	err := f.ingestor.ProcessJob(context.Background(), job)
	require.Error(t, err)

	assert.Equal(t, domain.DocumentStatusFailed, f.documents.Status("doc-1"))
	assert.Equal(t, 0, f.index.Count(), "no partial chunks may reach the index")
}

func TestProcessJob_UpsertFailureLeavesIndexEmpty(t *testing.T) {
	f := newIngestFixture(t)
	job := f.queueDocument(t, "some text")
	f.index.SetFailUpsert(errors.New("connection reset"))

	err := f.ingestor.ProcessJob(context.Background(), job)
	require.Error(t, err)
	assert.Equal(t, domain.DocumentStatusFailed, f.documents.Status("doc-1"))
	assert.Equal(t, 0, f.index.Count())
}

func TestProcessJob_RedeliveryIsNoOp(t *testing.T) {
	f := newIngestFixture(t)
	job := f.queueDocument(t, "some text")

	require.NoError(t, f.documents.UpdateStatus(context.Background(), "doc-1", domain.DocumentStatusIndexed, ""))

	require.NoError(t, f.ingestor.ProcessJob(context.Background(), job))
	assert.Equal(t, domain.DocumentStatusIndexed, f.documents.Status("doc-1"))
	assert.Equal(t, 0, f.index.Count(), "redelivery must not re-process")
}

func TestProcessJob_RetryAfterFailureReclaims(t *testing.T) {
	f := newIngestFixture(t)
	job := f.queueDocument(t, "some text")

	require.NoError(t, f.documents.UpdateStatus(context.Background(), "doc-1", domain.DocumentStatusFailed, "previous error"))

	require.NoError(t, f.ingestor.ProcessJob(context.Background(), job))
	assert.Equal(t, domain.DocumentStatusIndexed, f.documents.Status("doc-1"))
	assert.Equal(t, 1, f.index.CountByDoc("doc-1"))
}

func TestProcessJob_ForceBypassesClaim(t *testing.T) {
	f := newIngestFixture(t)
	job := f.queueDocument(t, "some text")
	job.Force = true

	require.NoError(t, f.documents.UpdateStatus(context.Background(), "doc-1", domain.DocumentStatusIndexed, ""))

	require.NoError(t, f.ingestor.ProcessJob(context.Background(), job))
	assert.Equal(t, domain.DocumentStatusIndexed, f.documents.Status("doc-1"))
	assert.Equal(t, 1, f.index.CountByDoc("doc-1"))
}

func TestProcessJob_UnsupportedMIMETypeFails(t *testing.T) {
	f := newIngestFixture(t)
	job := f.queueDocument(t, "some text")
	job.MimeType = "application/octet-stream"

	err := f.ingestor.ProcessJob(context.Background(), job)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedMIMEType)
	assert.Equal(t, domain.DocumentStatusFailed, f.documents.Status("doc-1"))
}

func TestProcessJob_UnknownDocumentErrors(t *testing.T) {
	f := newIngestFixture(t)
	job := domain.NewIngestionJob("missing", "/nowhere", "x.txt", testMIMEType, time.Now().UTC())

	err := f.ingestor.ProcessJob(context.Background(), job)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProcessJob_EmptyDocumentIndexesWithoutChunks(t *testing.T) {
	f := newIngestFixture(t)
	job := f.queueDocument(t, "   ")

	require.NoError(t, f.ingestor.ProcessJob(context.Background(), job))
	assert.Equal(t, domain.DocumentStatusIndexed, f.documents.Status("doc-1"))
	assert.Equal(t, 0, f.index.Count())
}

func TestProcessJob_EmbedsInBatchesOfTwenty(t *testing.T) {
	f := newIngestFixture(t)
	// 3000 words -> 7 chunks, still one batch of 20.
	job := f.queueDocument(t, words(3000))
	require.NoError(t, f.ingestor.ProcessJob(context.Background(), job))
	assert.Equal(t, 1, f.embedder.EmbedCalls())

	// 10000 words -> ceil((10000-50)/450) = 23 chunks -> 2 batches.
	f2 := newIngestFixture(t)
	job2 := f2.queueDocument(t, words(10000))
	require.NoError(t, f2.ingestor.ProcessJob(context.Background(), job2))
	assert.Equal(t, 2, f2.embedder.EmbedCalls())
}
