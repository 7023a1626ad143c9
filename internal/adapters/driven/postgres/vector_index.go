package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/harvora/context-core/internal/core/domain"
	"github.com/harvora/context-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex implements driven.VectorIndex using pgvector.
// Distance is inner product (<#>); with normalised embeddings the reported
// score is 1 - distance, higher meaning more similar.
type VectorIndex struct {
	db       *DB
	embedder driven.EmbeddingService
}

// NewVectorIndex creates a new VectorIndex
func NewVectorIndex(db *DB, embedder driven.EmbeddingService) *VectorIndex {
	return &VectorIndex{db: db, embedder: embedder}
}

// Upsert inserts-or-replaces chunk records in one transaction. Either every
// record becomes visible or none do.
func (s *VectorIndex) Upsert(ctx context.Context, records []*domain.ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}

	dims := s.embedder.Dimensions()
	for _, rec := range records {
		if len(rec.Embedding) != dims {
			return fmt.Errorf("%w: chunk %s has %d dimensions, index expects %d",
				domain.ErrDimensionMismatch, rec.ID, len(rec.Embedding), dims)
		}
	}

	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO embeddings (id, doc_id, chunk_index, content, embedding, original_name, region, certifications, primary_crops, created_at)
			VALUES ($1, $2, $3, $4, $5::vector, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO UPDATE SET
				doc_id = EXCLUDED.doc_id,
				chunk_index = EXCLUDED.chunk_index,
				content = EXCLUDED.content,
				embedding = EXCLUDED.embedding,
				original_name = EXCLUDED.original_name,
				region = EXCLUDED.region,
				certifications = EXCLUDED.certifications,
				primary_crops = EXCLUDED.primary_crops
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, rec := range records {
			_, err = stmt.ExecContext(ctx,
				rec.ID,
				rec.DocID,
				rec.ChunkIndex,
				rec.Content,
				encodeVector(rec.Embedding),
				rec.Metadata.OriginalName,
				rec.Metadata.Region,
				pq.Array(rec.Metadata.Certifications),
				pq.Array(rec.Metadata.PrimaryCrops),
				rec.CreatedAt,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// SimilaritySearch embeds the query and returns the k closest chunks by
// inner product, highest score first. Ties break on insertion order so
// results are deterministic.
func (s *VectorIndex) SimilaritySearch(ctx context.Context, query string, k int) ([]*domain.RankedChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	sqlQuery := `
		SELECT id, doc_id, content, original_name,
		       1 - (embedding <#> $1::vector) AS score
		FROM embeddings
		ORDER BY embedding <#> $1::vector, created_at, chunk_index
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, sqlQuery, encodeVector(embedding), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*domain.RankedChunk
	for rows.Next() {
		var c domain.RankedChunk
		if err := rows.Scan(&c.ID, &c.DocID, &c.Content, &c.Source, &c.Score); err != nil {
			return nil, err
		}
		chunks = append(chunks, &c)
	}
	return chunks, rows.Err()
}

// DeleteByDocID removes every chunk belonging to a document
func (s *VectorIndex) DeleteByDocID(ctx context.Context, docID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM embeddings WHERE doc_id = $1`, docID)
	return err
}

// Ping checks if the database is reachable
func (s *VectorIndex) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// encodeVector renders an embedding in pgvector's text format: [x1,x2,...]
func encodeVector(v []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}
