package driving

import (
	"context"

	"github.com/hoalabs/bylaws-assistant/internal/core/domain"
)

// IngestResult reports the outcome of ingesting one document.
type IngestResult struct {
	// DocumentID identifies the stored document.
	DocumentID string

	// Filename is the name the document was stored under.
	Filename string

	// Chunks is the number of chunks added to the vector index.
	Chunks int

	// Warning carries a soft warning, e.g. when extraction produced
	// no text and the document was stored without index entries.
	Warning string
}

// IngestionService accepts PDF documents and indexes them.
type IngestionService interface {
	// IngestPDF validates, stores, extracts, chunks, embeds and
	// indexes an uploaded PDF. Index updates are all-or-nothing per
	// document.
	IngestPDF(ctx context.Context, filename string, content []byte) (*IngestResult, error)

	// IngestFile ingests a PDF already on disk (reindex, watcher).
	IngestFile(ctx context.Context, path string) (*IngestResult, error)
}

// AnswerService answers homeowner questions against the indexed bylaws.
type AnswerService interface {
	// Ask retrieves the most relevant chunks and synthesises a grounded
	// answer with citations. Returns domain.ErrNotReady when nothing
	// has been indexed yet.
	Ask(ctx context.Context, question string) (*domain.Answer, error)

	// TestLLM sends a trivial prompt to the generation provider to
	// verify it responds.
	TestLLM(ctx context.Context) (string, error)

	// Ready reports whether the index can serve questions.
	Ready() bool
}

// RequestService accepts homeowner modification requests.
type RequestService interface {
	// Submit validates the request, assigns a unique request ID, and
	// persists the record. The returned request carries the generated
	// ID, status and submission timestamp.
	Submit(ctx context.Context, req *domain.ModificationRequest) (*domain.ModificationRequest, error)
}
