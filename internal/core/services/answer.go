package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/hoalabs/bylaws-assistant/internal/core/domain"
	"github.com/hoalabs/bylaws-assistant/internal/core/ports/driven"
	"github.com/hoalabs/bylaws-assistant/internal/core/ports/driving"
	"github.com/hoalabs/bylaws-assistant/internal/logger"
)

const (
	// answerMaxTokens caps generated answers; bylaws answers should be
	// short and grounded, not essays.
	answerMaxTokens = 512

	// defaultRetrievalK is used when the configured k is not positive.
	defaultRetrievalK = 4
)

var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerService answers questions by retrieving the closest bylaws
// chunks and asking the LLM to synthesise a grounded answer.
type AnswerService struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	llm      driven.LLMService
	k        int
}

// NewAnswerService wires the retrieval and generation dependencies.
// k is the number of chunks retrieved per question.
func NewAnswerService(embedder driven.EmbeddingService, index driven.VectorIndex, llm driven.LLMService, k int) *AnswerService {
	if k <= 0 {
		k = defaultRetrievalK
	}
	return &AnswerService{
		embedder: embedder,
		index:    index,
		llm:      llm,
		k:        k,
	}
}

// Ready reports whether the index has content to answer from.
func (s *AnswerService) Ready() bool {
	return s.index.Ready()
}

// Ask answers a homeowner question grounded in the indexed bylaws.
func (s *AnswerService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrValidation)
	}
	if !s.index.Ready() {
		return nil, fmt.Errorf("%w: no bylaws documents have been indexed yet", domain.ErrNotReady)
	}

	queryVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding question: %v", domain.ErrProvider, err)
	}

	results, err := s.index.Search(ctx, queryVec, s.k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no bylaws documents have been indexed yet", domain.ErrNotReady)
	}

	logger.Debug("Retrieved %d chunks for question (best score %.4f)", len(results), results[0].Score)

	prompt := buildPrompt(question, results)
	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   answerMaxTokens,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: generating answer: %v", domain.ErrProvider, err)
	}

	return &domain.Answer{
		Text:    strings.TrimSpace(text),
		Sources: citations(results),
	}, nil
}

// TestLLM sends a trivial prompt to verify the generation provider
// responds.
func (s *AnswerService) TestLLM(ctx context.Context) (string, error) {
	text, err := s.llm.Generate(ctx, "Say 'Hello'", driven.GenerateOptions{
		MaxTokens:   16,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}
	return strings.TrimSpace(text), nil
}

// buildPrompt assembles the grounded-answer prompt: instructions, the
// retrieved context blocks, then the question.
func buildPrompt(question string, results []driven.ScoredChunk) string {
	var b strings.Builder
	b.WriteString("You are an HOA assistant. Answer the homeowner's question using only the bylaws excerpts below. Be concise. If the excerpts do not contain the answer, say so.\n\n")
	b.WriteString("Bylaws excerpts:\n")
	for _, r := range results {
		fmt.Fprintf(&b, "--- %s (chunk %d) ---\n%s\n", r.Filename, r.Chunk.Position+1, r.Chunk.Content)
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}

// citations formats source references in retrieval order, dropping
// duplicates.
func citations(results []driven.ScoredChunk) []string {
	seen := make(map[string]bool, len(results))
	sources := make([]string, 0, len(results))
	for _, r := range results {
		ref := fmt.Sprintf("%s (chunk %d)", r.Filename, r.Chunk.Position+1)
		if seen[ref] {
			continue
		}
		seen[ref] = true
		sources = append(sources, ref)
	}
	return sources
}
