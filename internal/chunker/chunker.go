// Package chunker splits extracted document text into overlapping
// fixed-size windows, the unit of retrieval.
package chunker

import (
	"github.com/google/uuid"

	"github.com/hoalabs/bylaws-assistant/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultOverlap is the default number of overlapping characters
// between consecutive chunks. Overlap avoids losing context that spans
// a chunk boundary.
const DefaultOverlap = 200

// Chunker produces fixed-size overlapping chunks from document text.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave room for the window to advance
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// ChunkSize returns the configured window size.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int { return c.overlap }

// Split chunks the text of one document, numbering chunks by ordinal
// position. Empty text yields no chunks; text shorter than one window
// yields exactly one chunk. Windows are measured in runes so a chunk
// boundary never lands inside a multi-byte character.
func (c *Chunker) Split(documentID, text string) []domain.Chunk {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	total := len(runes)
	step := c.chunkSize - c.overlap

	chunks := make([]domain.Chunk, 0, total/step+1)
	position := 0

	for start := 0; start < total; start += step {
		end := start + c.chunkSize
		if end > total {
			end = total
		}

		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			Content:    string(runes[start:end]),
			Position:   position,
		})
		position++

		if end == total {
			break
		}
	}

	return chunks
}
