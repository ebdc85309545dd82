package driven

import (
	"context"

	"github.com/hoalabs/bylaws-assistant/internal/core/domain"
)

// VectorIndex stores chunk embeddings and performs nearest-neighbour
// retrieval. State is persisted to durable storage so a restart does
// not require re-embedding every document.
//
// The index is append-only: new documents merge into the existing
// state and no entry is ever updated in place.
type VectorIndex interface {
	// Ingest appends a document's chunks atomically: either all chunks
	// land in the persisted index or none do. Returns the number of
	// chunks added.
	Ingest(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) (int, error)

	// Search returns the k nearest chunks to the query vector, best
	// match first. Ties are broken by original insertion order.
	// k <= 0 is a validation error; k larger than the number of
	// indexed chunks returns everything available.
	Search(ctx context.Context, query []float32, k int) ([]ScoredChunk, error)

	// Ready reports whether any chunks are indexed.
	Ready() bool

	// Documents returns the number of ingested documents.
	Documents() int

	// Reset removes all persisted state. Used by reindexing.
	Reset(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ScoredChunk is a retrieval result.
type ScoredChunk struct {
	// Chunk is the matched chunk.
	Chunk domain.Chunk

	// Filename is the parent document's upload filename, for citations.
	Filename string

	// Score is the cosine similarity to the query (higher is closer).
	Score float64
}
