// Package huggingface provides an LLM service adapter using the
// Hugging Face Inference API.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hoalabs/bylaws-assistant/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api-inference.huggingface.co"
	DefaultModel   = "mistralai/Mistral-7B-Instruct-v0.2"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Hugging Face LLM service.
type Config struct {
	// APIKey is the Hugging Face API token (required).
	APIKey string

	// BaseURL is the Inference API base URL.
	BaseURL string

	// Model is the text-generation model to use.
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService generates text via the Hugging Face Inference API.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// generateRequest is the Inference API text-generation request format.
type generateRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		MaxNewTokens   int      `json:"max_new_tokens,omitempty"`
		Temperature    float64  `json:"temperature,omitempty"`
		Stop           []string `json:"stop,omitempty"`
		ReturnFullText bool     `json:"return_full_text"`
	} `json:"parameters"`
	Options struct {
		WaitForModel bool `json:"wait_for_model"`
	} `json:"options"`
}

// generateResponse is the Inference API text-generation response format.
type generateResponse []struct {
	GeneratedText string `json:"generated_text"`
}

// NewLLMService creates a new Hugging Face LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("huggingface: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Generate produces a text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	reqBody := generateRequest{Inputs: prompt}
	reqBody.Parameters.MaxNewTokens = opts.MaxTokens
	reqBody.Parameters.Temperature = opts.Temperature
	reqBody.Parameters.Stop = opts.StopWords
	reqBody.Parameters.ReturnFullText = false
	reqBody.Options.WaitForModel = true

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := s.baseURL + "/models/" + s.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("huggingface error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(genResp) == 0 {
		return "", fmt.Errorf("huggingface: no generation returned")
	}

	return strings.TrimSpace(genResp[0].GeneratedText), nil
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the token and model with a one-token generation.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.Generate(ctx, "ping", driven.GenerateOptions{MaxTokens: 1}); err != nil {
		return fmt.Errorf("huggingface: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
