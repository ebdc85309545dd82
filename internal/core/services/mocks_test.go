package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hoalabs/bylaws-assistant/internal/core/domain"
	"github.com/hoalabs/bylaws-assistant/internal/core/ports/driven"
)

// mockEmbedder returns deterministic vectors derived from text length.
type mockEmbedder struct {
	dims    int
	failOn  string
	batches int
}

func newMockEmbedder() *mockEmbedder { return &mockEmbedder{dims: 3} }

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.failOn != "" && strings.Contains(text, m.failOn) {
		return nil, fmt.Errorf("provider unavailable")
	}
	v := make([]float32, m.dims)
	v[0] = float32(len(text)%7) + 1
	v[1] = float32(len(text)%3) + 1
	v[2] = 1
	return v, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.batches++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int            { return m.dims }
func (m *mockEmbedder) ModelName() string          { return "mock-embed" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error               { return nil }

// mockLLM echoes a canned answer and records the last prompt.
type mockLLM struct {
	answer     string
	err        error
	lastPrompt string
	lastOpts   driven.GenerateOptions
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.lastPrompt = prompt
	m.lastOpts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockLLM) ModelName() string          { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

// mockIndex is an in-memory VectorIndex that returns entries in
// insertion order regardless of the query.
type mockIndex struct {
	mu      sync.Mutex
	docs    []*domain.Document
	chunks  []driven.ScoredChunk
	failure error
}

func (m *mockIndex) Ingest(_ context.Context, doc *domain.Document, chunks []domain.Chunk) (int, error) {
	if m.failure != nil {
		return 0, m.failure
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, doc)
	for _, c := range chunks {
		m.chunks = append(m.chunks, driven.ScoredChunk{
			Chunk:    c,
			Filename: doc.Filename,
			Score:    0.9,
		})
	}
	return len(chunks), nil
}

func (m *mockIndex) Search(_ context.Context, _ []float32, k int) ([]driven.ScoredChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if k > len(m.chunks) {
		k = len(m.chunks)
	}
	return m.chunks[:k], nil
}

func (m *mockIndex) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunks) > 0
}

func (m *mockIndex) Documents() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

func (m *mockIndex) Reset(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = nil
	m.chunks = nil
	return nil
}

func (m *mockIndex) Close() error { return nil }

// mockExtractor maps paths to canned text.
type mockExtractor struct {
	text  string
	pages int
	err   error
}

func (m *mockExtractor) Extract(context.Context, string) (string, int, error) {
	return m.text, m.pages, m.err
}

// mockDocStore records saves in memory.
type mockDocStore struct {
	saved map[string][]byte
}

func newMockDocStore() *mockDocStore {
	return &mockDocStore{saved: make(map[string][]byte)}
}

func (m *mockDocStore) Save(_ context.Context, filename string, content []byte) (string, error) {
	name := filepath.Base(filename)
	m.saved[name] = content
	return "/docs/" + name, nil
}

func (m *mockDocStore) List(context.Context) ([]string, error) {
	var paths []string
	for name := range m.saved {
		paths = append(paths, "/docs/"+name)
	}
	return paths, nil
}

func (m *mockDocStore) Path(filename string) string {
	return "/docs/" + filepath.Base(filename)
}

// mockRequestStore records saved requests.
type mockRequestStore struct {
	mu    sync.Mutex
	saved []*domain.ModificationRequest
	err   error
}

func (m *mockRequestStore) Save(_ context.Context, req *domain.ModificationRequest) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, req)
	return nil
}
