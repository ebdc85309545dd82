package cli

import (
	"fmt"

	"github.com/hoalabs/bylaws-assistant/internal/adapters/driven/ai"
	"github.com/hoalabs/bylaws-assistant/internal/adapters/driven/index/sqlite"
	"github.com/hoalabs/bylaws-assistant/internal/adapters/driven/storage/file"
	"github.com/hoalabs/bylaws-assistant/internal/chunker"
	"github.com/hoalabs/bylaws-assistant/internal/config"
	"github.com/hoalabs/bylaws-assistant/internal/core/ports/driven"
	"github.com/hoalabs/bylaws-assistant/internal/core/services"
	"github.com/hoalabs/bylaws-assistant/internal/extract/pdf"
	"github.com/hoalabs/bylaws-assistant/internal/logger"
)

// app holds the wired application graph. Built once per command run.
type app struct {
	cfg       *config.Config
	docs      *file.DocumentStore
	index     *sqlite.Index
	embedder  driven.EmbeddingService
	llm       driven.LLMService
	ingestion *services.IngestionService
	answers   *services.AnswerService
	requests  *services.RequestService
}

// buildApp constructs every adapter and service from configuration.
// Provider connectivity problems are warnings, not failures: the HTTP
// API should come up (health endpoint included) even when Ollama is
// still starting.
func buildApp() (*app, error) {
	cfg, err := config.Load(flagConfigFile)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	if !pdf.Available() {
		logger.Warn("pdftotext not found; PDF ingestion will fail.\n%s", pdf.InstallInstructions())
	}

	docs, err := file.NewDocumentStore(cfg.DocumentsDir)
	if err != nil {
		return nil, err
	}
	requests, err := file.NewRequestStore(cfg.RequestsDir)
	if err != nil {
		return nil, err
	}
	index, err := sqlite.New(cfg.IndexDir)
	if err != nil {
		return nil, err
	}

	embedder, err := ai.CreateEmbeddingService(cfg)
	if err != nil {
		index.Close()
		return nil, err
	}
	llm, err := ai.CreateLLMService(cfg)
	if err != nil {
		embedder.Close()
		index.Close()
		return nil, err
	}

	if err := ai.ValidateEmbeddingService(embedder); err != nil {
		logger.Warn("%v", err)
	}
	if err := ai.ValidateLLMService(llm); err != nil {
		logger.Warn("%v", err)
	}

	ch := chunker.New(
		chunker.WithChunkSize(cfg.ChunkSize),
		chunker.WithOverlap(cfg.ChunkOverlap),
	)

	return &app{
		cfg:       cfg,
		docs:      docs,
		index:     index,
		embedder:  embedder,
		llm:       llm,
		ingestion: services.NewIngestionService(docs, pdf.New(), ch, embedder, index),
		answers:   services.NewAnswerService(embedder, index, llm, cfg.RetrievalK),
		requests:  services.NewRequestService(requests),
	}, nil
}

func (a *app) close() {
	a.llm.Close()
	a.embedder.Close()
	if err := a.index.Close(); err != nil {
		logger.Warn("closing index: %v", err)
	}
}
