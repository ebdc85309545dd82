// Package config loads application configuration.
//
// Precedence, lowest to highest: built-in defaults, an optional TOML
// config file, environment variables. A .env file in the working
// directory is loaded into the environment first.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/hoalabs/bylaws-assistant/internal/logger"
)

// Provider names accepted for LLM_PROVIDER and EMBEDDING_PROVIDER.
const (
	ProviderOpenAI      = "openai"
	ProviderOllama      = "ollama"
	ProviderHuggingFace = "huggingface"
)

// Config holds all application settings.
type Config struct {
	Port string `toml:"port"`

	DocumentsDir string `toml:"documents_dir"`
	IndexDir     string `toml:"index_dir"`
	RequestsDir  string `toml:"requests_dir"`
	StaticDir    string `toml:"static_dir"`

	LLMProvider       string `toml:"llm_provider"`
	EmbeddingProvider string `toml:"embedding_provider"`

	OpenAI      OpenAIConfig      `toml:"openai"`
	Ollama      OllamaConfig      `toml:"ollama"`
	HuggingFace HuggingFaceConfig `toml:"huggingface"`

	ChunkSize    int `toml:"chunk_size"`
	ChunkOverlap int `toml:"chunk_overlap"`
	RetrievalK   int `toml:"retrieval_k"`
}

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
}

// OllamaConfig configures the Ollama provider.
type OllamaConfig struct {
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
}

// HuggingFaceConfig configures the Hugging Face Inference API provider.
type HuggingFaceConfig struct {
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
}

// Default returns the built-in defaults. Ollama is the default
// provider for both generation and embeddings so the assistant works
// without any API key.
func Default() *Config {
	return &Config{
		Port:              "8000",
		DocumentsDir:      "documents",
		IndexDir:          "index",
		RequestsDir:       "requests",
		LLMProvider:       ProviderOllama,
		EmbeddingProvider: ProviderOllama,
		OpenAI: OpenAIConfig{
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
		},
		Ollama: OllamaConfig{
			BaseURL:        "http://localhost:11434",
			Model:          "mistral",
			EmbeddingModel: "nomic-embed-text",
		},
		HuggingFace: HuggingFaceConfig{
			Model:          "mistralai/Mistral-7B-Instruct-v0.2",
			EmbeddingModel: "sentence-transformers/all-MiniLM-L6-v2",
		},
		ChunkSize:    1000,
		ChunkOverlap: 200,
		RetrievalK:   4,
	}
}

// Load builds the configuration. filePath names an optional TOML file;
// an empty filePath skips the file layer. Environment variables
// override both defaults and file values.
func Load(filePath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Debug("no .env file loaded: %v", err)
	}

	cfg := Default()

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", filePath, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Port, "PORT")
	setString(&c.DocumentsDir, "DOCUMENTS_DIR")
	setString(&c.IndexDir, "INDEX_DIR")
	setString(&c.RequestsDir, "REQUESTS_DIR")
	setString(&c.StaticDir, "STATIC_DIR")
	setString(&c.LLMProvider, "LLM_PROVIDER")
	setString(&c.EmbeddingProvider, "EMBEDDING_PROVIDER")

	setString(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&c.OpenAI.Model, "OPENAI_MODEL")
	setString(&c.OpenAI.EmbeddingModel, "OPENAI_EMBEDDING_MODEL")

	setString(&c.Ollama.BaseURL, "OLLAMA_BASE_URL")
	setString(&c.Ollama.Model, "OLLAMA_MODEL")
	setString(&c.Ollama.EmbeddingModel, "OLLAMA_EMBEDDING_MODEL")

	setString(&c.HuggingFace.APIKey, "HUGGINGFACE_API_KEY")
	setString(&c.HuggingFace.Model, "HUGGINGFACE_MODEL")
	setString(&c.HuggingFace.EmbeddingModel, "HUGGINGFACE_EMBEDDING_MODEL")

	setInt(&c.ChunkSize, "CHUNK_SIZE")
	setInt(&c.ChunkOverlap, "CHUNK_OVERLAP")
	setInt(&c.RetrievalK, "RETRIEVAL_K")
}

func (c *Config) validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderOllama, ProviderHuggingFace:
	default:
		return fmt.Errorf("unknown LLM provider %q", c.LLMProvider)
	}
	switch c.EmbeddingProvider {
	case ProviderOpenAI, ProviderOllama, ProviderHuggingFace:
	default:
		return fmt.Errorf("unknown embedding provider %q", c.EmbeddingProvider)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must be in [0, chunk_size), got %d", c.ChunkOverlap)
	}
	if c.RetrievalK <= 0 {
		return fmt.Errorf("retrieval_k must be positive, got %d", c.RetrievalK)
	}
	return nil
}

// LLMModel returns the model name for the configured LLM provider.
func (c *Config) LLMModel() string {
	switch c.LLMProvider {
	case ProviderOpenAI:
		return c.OpenAI.Model
	case ProviderHuggingFace:
		return c.HuggingFace.Model
	default:
		return c.Ollama.Model
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn("ignoring %s=%q: %v", key, v, err)
		return
	}
	*dst = n
}
