package domain

import "time"

// Document statuses.
const (
	// StatusIndexed means the document's chunks are in the vector index.
	StatusIndexed = "indexed"

	// StatusEmpty means extraction produced no text; the document is
	// stored but contributes nothing to the index.
	StatusEmpty = "empty"
)

// Document represents an uploaded bylaws PDF.
// It is created on upload and immutable once indexed.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Filename is the name the document was uploaded under.
	Filename string

	// Path is the location of the raw PDF on disk.
	Path string

	// Pages is the page count reported by text extraction.
	Pages int

	// Status is one of the Status* constants.
	Status string

	// ChunkCount is the number of chunks produced at ingestion.
	ChunkCount int

	// Embedder records the embedding model used at ingestion time.
	// Kept for forensics only; mismatches are not detected at query time.
	Embedder string

	// Dimensions is the embedding vector size used at ingestion time.
	Dimensions int

	// CreatedAt is when the document was uploaded.
	CreatedAt time.Time
}

// Chunk represents a retrievable unit within a document.
// Chunks are created during ingestion and never mutated.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text span of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation for similarity search.
	Embedding []float32
}

// Answer is the result of asking a question against the indexed bylaws.
// It is ephemeral and never persisted.
type Answer struct {
	// Text is the generated answer, grounded in retrieved chunks.
	Text string

	// Sources lists the citations the answer drew on, in retrieval
	// order with duplicates removed.
	Sources []string
}
