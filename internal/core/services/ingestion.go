// Package services implements the driving ports on top of the driven
// ports. Services own the business rules; adapters stay mechanical.
package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hoalabs/bylaws-assistant/internal/chunker"
	"github.com/hoalabs/bylaws-assistant/internal/core/domain"
	"github.com/hoalabs/bylaws-assistant/internal/core/ports/driven"
	"github.com/hoalabs/bylaws-assistant/internal/core/ports/driving"
	"github.com/hoalabs/bylaws-assistant/internal/logger"
)

var pdfMagic = []byte("%PDF-")

var _ driving.IngestionService = (*IngestionService)(nil)

// IngestionService runs the upload pipeline: validate, store, extract,
// chunk, embed, index.
type IngestionService struct {
	docs      driven.DocumentStore
	extractor driven.Extractor
	chunker   *chunker.Chunker
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
}

// NewIngestionService wires the pipeline dependencies.
func NewIngestionService(
	docs driven.DocumentStore,
	extractor driven.Extractor,
	ch *chunker.Chunker,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
) *IngestionService {
	return &IngestionService{
		docs:      docs,
		extractor: extractor,
		chunker:   ch,
		embedder:  embedder,
		index:     index,
	}
}

// IngestPDF validates and ingests an uploaded PDF. The raw file is
// stored before extraction is attempted, so a document that fails
// downstream can be reindexed later without re-uploading.
func (s *IngestionService) IngestPDF(ctx context.Context, filename string, content []byte) (*driving.IngestResult, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrValidation)
	}
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, fmt.Errorf("%w: only PDF files are accepted, got %q", domain.ErrValidation, filepath.Ext(filename))
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: uploaded file is empty", domain.ErrValidation)
	}
	if !bytes.HasPrefix(content, pdfMagic) {
		return nil, fmt.Errorf("%w: file does not look like a PDF", domain.ErrValidation)
	}

	path, err := s.docs.Save(ctx, filename, content)
	if err != nil {
		return nil, fmt.Errorf("storing document: %w", err)
	}

	return s.ingest(ctx, path)
}

// IngestFile ingests a PDF already on disk. Used by reindexing and the
// documents-directory watcher.
func (s *IngestionService) IngestFile(ctx context.Context, path string) (*driving.IngestResult, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	return s.ingest(ctx, path)
}

func (s *IngestionService) ingest(ctx context.Context, path string) (*driving.IngestResult, error) {
	filename := filepath.Base(path)
	logger.Debug("Ingesting %s", filename)

	text, pages, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: extracting text from %s: %v", domain.ErrIngestion, filename, err)
	}

	doc := &domain.Document{
		ID:        uuid.New().String(),
		Filename:  filename,
		Path:      path,
		Pages:     pages,
		Status:    domain.StatusIndexed,
		Embedder:  s.embedder.ModelName(),
		CreatedAt: time.Now().UTC(),
	}

	// A scanned-image PDF extracts to nothing. Store the document so
	// the upload is acknowledged, but there is nothing to index.
	if strings.TrimSpace(text) == "" {
		doc.Status = domain.StatusEmpty
		if _, err := s.index.Ingest(ctx, doc, nil); err != nil {
			return nil, fmt.Errorf("recording empty document: %w", err)
		}
		logger.Info("Stored %s: no extractable text", filename)
		return &driving.IngestResult{
			DocumentID: doc.ID,
			Filename:   filename,
			Warning:    "no extractable text found; the PDF may be scanned images",
		}, nil
	}

	chunks := s.chunker.Split(doc.ID, text)
	doc.ChunkCount = len(chunks)

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding %s: %v", domain.ErrIngestion, filename, err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("%w: embedding %s: got %d vectors for %d chunks",
			domain.ErrIngestion, filename, len(embeddings), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}
	doc.Dimensions = s.embedder.Dimensions()

	added, err := s.index.Ingest(ctx, doc, chunks)
	if err != nil {
		return nil, fmt.Errorf("indexing %s: %w", filename, err)
	}

	logger.Info("Indexed %s: %d pages, %d chunks", filename, pages, added)
	return &driving.IngestResult{
		DocumentID: doc.ID,
		Filename:   filename,
		Chunks:     added,
	}, nil
}
