package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/harvora/context-core/internal/core/domain"
	"github.com/harvora/context-core/internal/core/ports/driven"
)

// embedBatchSize is how many chunks are embedded per provider call.
const embedBatchSize = 20

// Ingestor drives a document through its lifecycle:
// claim -> read -> parse -> chunk -> embed -> upsert -> INDEXED.
//
// It is invoked by the worker once per delivered job and must stay
// idempotent under at-least-once redelivery: chunk ids are deterministic
// and the vector index upserts, so re-running a job is safe.
type Ingestor struct {
	documents driven.DocumentStore
	index     driven.VectorIndex
	embedder  driven.EmbeddingService
	parsers   driven.ParserRegistry
	logger    *slog.Logger

	maxTokens int
	overlap   int
}

// IngestorConfig holds dependencies for the Ingestor.
type IngestorConfig struct {
	DocumentStore driven.DocumentStore
	VectorIndex   driven.VectorIndex
	Embedder      driven.EmbeddingService
	Parsers       driven.ParserRegistry
	Logger        *slog.Logger

	// MaxChunkTokens and ChunkOverlap default to 500/50 words.
	MaxChunkTokens int
	ChunkOverlap   int
}

// NewIngestor creates a new ingestion orchestrator.
func NewIngestor(cfg IngestorConfig) *Ingestor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxTokens := cfg.MaxChunkTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxChunkTokens
	}
	overlap := cfg.ChunkOverlap
	if overlap < 0 || overlap >= maxTokens {
		overlap = DefaultChunkOverlap
	}

	return &Ingestor{
		documents: cfg.DocumentStore,
		index:     cfg.VectorIndex,
		embedder:  cfg.Embedder,
		parsers:   cfg.Parsers,
		logger:    logger,
		maxTokens: maxTokens,
		overlap:   overlap,
	}
}

// ProcessJob processes one ingestion job. On success the document ends in
// INDEXED with all chunks upserted; on failure it ends in FAILED with the
// error text persisted, and the error is returned so the queue applies its
// retry policy. A redelivery for a document that is already PROCESSING or
// INDEXED is a no-op unless the job carries the force flag.
func (ing *Ingestor) ProcessJob(ctx context.Context, job *domain.IngestionJob) error {
	logger := ing.logger.With("doc_id", job.DocID, "job_id", job.ID)

	doc, err := ing.documents.FindByID(ctx, job.DocID)
	if err != nil {
		return fmt.Errorf("load document %s: %w", job.DocID, err)
	}

	// Persist PROCESSING before any I/O. The conditional update is the
	// mutual-exclusion gate: exactly one worker claims a given document.
	if job.Force {
		if err := ing.documents.UpdateStatus(ctx, job.DocID, domain.DocumentStatusProcessing, ""); err != nil {
			return fmt.Errorf("mark processing: %w", err)
		}
	} else {
		claimed, err := ing.documents.ClaimProcessing(ctx, job.DocID)
		if err != nil {
			return fmt.Errorf("claim document: %w", err)
		}
		if !claimed {
			logger.Info("skipping redelivery, document already claimed", "status", doc.Status)
			return nil
		}
	}

	logger.Info("processing document", "mime_type", job.MimeType)

	if err := ing.process(ctx, job, doc); err != nil {
		if updErr := ing.documents.UpdateStatus(ctx, job.DocID, domain.DocumentStatusFailed, err.Error()); updErr != nil {
			logger.Error("failed to persist FAILED status", "error", updErr)
		}
		return err
	}

	if err := ing.documents.UpdateStatus(ctx, job.DocID, domain.DocumentStatusIndexed, ""); err != nil {
		return fmt.Errorf("mark indexed: %w", err)
	}

	// Best-effort cleanup; the document is already INDEXED.
	if err := os.Remove(job.FilePath); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove temp file", "path", job.FilePath, "error", err)
	}

	logger.Info("document indexed")
	return nil
}

// process runs the fallible middle of the pipeline: read, parse, chunk,
// embed and upsert. Nothing is upserted unless every chunk embedded, so a
// half-indexed document can never appear INDEXED.
func (ing *Ingestor) process(ctx context.Context, job *domain.IngestionJob, doc *domain.Document) error {
	data, err := os.ReadFile(job.FilePath)
	if err != nil {
		return fmt.Errorf("read source file: %w", err)
	}

	parser := ing.parsers.Get(job.MimeType)
	if parser == nil {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedMIMEType, job.MimeType)
	}

	text, err := parser.Parse(ctx, data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", job.MimeType, err)
	}

	chunks := ChunkText(text, ing.maxTokens, ing.overlap)
	if len(chunks) == 0 {
		ing.logger.Warn("document produced no chunks", "doc_id", job.DocID)
		return nil
	}

	embeddings, err := ing.embedChunks(ctx, chunks)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	records := make([]*domain.ChunkRecord, len(chunks))
	for i, content := range chunks {
		records[i] = &domain.ChunkRecord{
			ID:         domain.ChunkID(job.DocID, i),
			DocID:      job.DocID,
			ChunkIndex: i,
			Content:    content,
			Embedding:  embeddings[i],
			Metadata:   chunkMetadata(job, doc),
			CreatedAt:  now,
		}
	}

	if err := ing.index.Upsert(ctx, records); err != nil {
		return fmt.Errorf("upsert %d chunks: %w", len(records), err)
	}

	return nil
}

// embedChunks embeds chunks sequentially in fixed-size batches. A batch
// failure aborts the whole job so partial embedding sets never reach the
// index.
func (ing *Ingestor) embedChunks(ctx context.Context, chunks []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		batch, err := ing.embedder.Embed(ctx, chunks[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embedding provider returned %d vectors for %d texts", len(batch), end-start)
		}
		embeddings = append(embeddings, batch...)
	}
	return embeddings, nil
}

func chunkMetadata(job *domain.IngestionJob, doc *domain.Document) domain.ChunkMetadata {
	md := domain.ChunkMetadata{OriginalName: job.OriginalName}
	if doc == nil || doc.Metadata == nil {
		return md
	}
	md.Region = doc.Metadata["region"]
	if v := doc.Metadata["certifications"]; v != "" {
		md.Certifications = splitList(v)
	}
	if v := doc.Metadata["primary_crops"]; v != "" {
		md.PrimaryCrops = splitList(v)
	}
	return md
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
