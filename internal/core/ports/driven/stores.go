package driven

import (
	"context"

	"github.com/hoalabs/bylaws-assistant/internal/core/domain"
)

// DocumentStore persists raw uploaded PDF bytes on durable storage.
// It exclusively owns the document files; deletion happens only by
// out-of-band manual file removal.
type DocumentStore interface {
	// Save writes the raw bytes under the given filename and returns
	// the path of the stored file. Re-saving the same filename
	// overwrites the previous bytes.
	Save(ctx context.Context, filename string, content []byte) (string, error)

	// List returns the paths of the stored PDFs in lexical order.
	List(ctx context.Context) ([]string, error)

	// Path returns the on-disk path a filename maps to.
	Path(filename string) string
}

// RequestStore persists homeowner modification requests, one durable
// record per request. There is no update or query-by-id operation.
type RequestStore interface {
	// Save writes a new request record. Saving an ID that already
	// exists is an error.
	Save(ctx context.Context, req *domain.ModificationRequest) error
}

// Extractor pulls plain text out of a stored PDF.
type Extractor interface {
	// Extract returns the text content and page count of the PDF at
	// path. Scanned-image-only PDFs yield empty text, not an error.
	Extract(ctx context.Context, path string) (text string, pages int, err error)
}
