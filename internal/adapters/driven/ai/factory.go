// Package ai provides factory functions for creating the embedding and
// LLM provider adapters. The provider is selected once at process
// startup from configuration; there is no per-call dispatch.
package ai

import (
	"context"
	"fmt"
	"time"

	hfembed "github.com/hoalabs/bylaws-assistant/internal/adapters/driven/embedding/huggingface"
	ollamaembed "github.com/hoalabs/bylaws-assistant/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/hoalabs/bylaws-assistant/internal/adapters/driven/embedding/openai"
	hfllm "github.com/hoalabs/bylaws-assistant/internal/adapters/driven/llm/huggingface"
	ollamallm "github.com/hoalabs/bylaws-assistant/internal/adapters/driven/llm/ollama"
	openaillm "github.com/hoalabs/bylaws-assistant/internal/adapters/driven/llm/openai"
	"github.com/hoalabs/bylaws-assistant/internal/config"
	"github.com/hoalabs/bylaws-assistant/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService creates the embedding adapter named by
// cfg.EmbeddingProvider.
func CreateEmbeddingService(cfg *config.Config) (driven.EmbeddingService, error) {
	switch cfg.EmbeddingProvider {
	case config.ProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.EmbeddingModel,
		})
	case config.ProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: cfg.Ollama.BaseURL,
			Model:   cfg.Ollama.EmbeddingModel,
		}), nil
	case config.ProviderHuggingFace:
		return hfembed.NewEmbeddingService(hfembed.Config{
			APIKey: cfg.HuggingFace.APIKey,
			Model:  cfg.HuggingFace.EmbeddingModel,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
}

// CreateLLMService creates the LLM adapter named by cfg.LLMProvider.
func CreateLLMService(cfg *config.Config) (driven.LLMService, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
		})
	case config.ProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: cfg.Ollama.BaseURL,
			Model:   cfg.Ollama.Model,
		}), nil
	case config.ProviderHuggingFace:
		return hfllm.NewLLMService(hfllm.Config{
			APIKey: cfg.HuggingFace.APIKey,
			Model:  cfg.HuggingFace.Model,
		})
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}

// ValidateEmbeddingService pings the embedding provider with a short
// timeout so startup fails fast when it is unreachable.
func ValidateEmbeddingService(svc driven.EmbeddingService) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("embedding service unreachable: %w", err)
	}
	return nil
}

// ValidateLLMService pings the LLM provider with a short timeout.
func ValidateLLMService(svc driven.LLMService) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("LLM service unreachable: %w", err)
	}
	return nil
}
