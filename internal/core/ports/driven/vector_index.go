package driven

import (
	"context"

	"github.com/harvora/context-core/internal/core/domain"
)

// VectorIndex handles chunk embedding persistence and similarity search
// (pgvector). Implementations must make Upsert atomic per call so a crash
// mid-upsert never leaves a partially indexed document visible.
type VectorIndex interface {
	// Upsert inserts-or-replaces the given records by id in one
	// transaction. Either all records become visible or none do; on
	// failure the caller retries the whole batch.
	Upsert(ctx context.Context, records []*domain.ChunkRecord) error

	// SimilaritySearch embeds the query text and returns the k closest
	// chunks ordered by descending score. Ties break on insertion order,
	// so results are deterministic.
	SimilaritySearch(ctx context.Context, query string, k int) ([]*domain.RankedChunk, error)

	// DeleteByDocID removes every chunk belonging to a document.
	DeleteByDocID(ctx context.Context, docID string) error

	// Ping checks if the index backend is healthy.
	Ping(ctx context.Context) error
}
