package domain

import (
	"fmt"
	"time"
)

// ChunkRecord is the unit stored in the vector index: one overlapping slice
// of a document's text with its embedding and retrieval metadata.
//
// Chunk ids are deterministic ("<docId>_chunk_<index>", contiguous 0..n-1)
// so reprocessing a document overwrites its chunks instead of duplicating.
type ChunkRecord struct {
	ID         string    `json:"id"`
	DocID      string    `json:"doc_id"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"embedding,omitempty"`
	Metadata   ChunkMetadata
	CreatedAt  time.Time `json:"created_at"`
}

// ChunkMetadata carries retrieval and domain attributes for a chunk.
// Region, certifications and primary crops feed non-chat features and may
// be empty.
type ChunkMetadata struct {
	OriginalName   string   `json:"original_name"`
	Region         string   `json:"region,omitempty"`
	Certifications []string `json:"certifications,omitempty"`
	PrimaryCrops   []string `json:"primary_crops,omitempty"`
}

// ChunkID builds the deterministic id for a chunk of a document.
func ChunkID(docID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", docID, index)
}

// RankedChunk is a similarity search hit, highest score = most similar.
type RankedChunk struct {
	ID      string  `json:"id"`
	DocID   string  `json:"doc_id"`
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
}
