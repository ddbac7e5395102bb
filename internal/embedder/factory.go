package embedder

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/54b3r/aimicro-go/internal/rag"
)

// Supported embedding backends.
const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
	BackendAzure  = "azure"
	BackendGemini = "gemini"
)

// Default embedding models per backend.
const (
	// defaultOllamaModel is all-MiniLM-L6-v2 as published in the Ollama library.
	defaultOllamaModel = "all-minilm"
	defaultOpenAIModel = "text-embedding-3-small"
	defaultGeminiModel = "text-embedding-004"

	defaultOllamaDimensions = 384
	defaultOpenAIDimensions = 1536
	defaultGeminiDimensions = 768
)

// Config holds the resolved embedding configuration. The same Config must be
// used to build an index and to query it.
type Config struct {
	// Backend selects the embedding API: ollama, openai, azure, or gemini.
	Backend string

	// Model is the embedding model (Ollama tag, OpenAI model, or Azure deployment).
	Model string

	// Dimensions is the vector length the model produces.
	Dimensions int

	// Endpoint is the API base URL. Ignored for gemini.
	Endpoint string

	// APIKey authenticates against openai, azure, and gemini.
	APIKey string

	// APIVersion is the Azure OpenAI API version. Ignored for other backends.
	APIVersion string
}

// Fingerprint returns "backend/model/dims", the identity recorded in every
// index built with this configuration.
func (c *Config) Fingerprint() string {
	return fingerprint(c.Backend, c.Model, c.Dimensions)
}

func fingerprint(backend, model string, dims int) string {
	return fmt.Sprintf("%s/%s/%d", backend, model, dims)
}

// DefaultDimensions returns the default embedding vector size for backend.
func DefaultDimensions(backend string) int {
	switch backend {
	case BackendOllama:
		return defaultOllamaDimensions
	case BackendGemini:
		return defaultGeminiDimensions
	default:
		return defaultOpenAIDimensions
	}
}

// ConfigFromEnv resolves an embedding Config using cascading defaults that
// inherit from the chat provider configuration when embedding-specific
// overrides are not set.
//
// Resolution order:
//
//  1. EMBEDDING_PROVIDER, else MODEL_PROVIDER when it names an embedding
//     backend, else ollama
//  2. Per-backend credentials are inherited from the chat provider's env vars
//  3. EMBEDDING_MODEL overrides the default model for the resolved backend
//  4. EMBEDDING_API_KEY overrides the inherited API key
//  5. EMBEDDING_ENDPOINT overrides the inherited endpoint
//  6. EMBEDDING_DIMENSIONS overrides the default dimensions
func ConfigFromEnv() *Config {
	backend := getEnv("EMBEDDING_PROVIDER")
	if backend == "" {
		switch p := getEnv("MODEL_PROVIDER"); p {
		case BackendOpenAI, BackendAzure, BackendGemini, BackendOllama:
			backend = p
		default:
			backend = BackendOllama
		}
	}

	cfg := &Config{
		Backend:    backend,
		Dimensions: getEnvInt("EMBEDDING_DIMENSIONS", DefaultDimensions(backend)),
		APIKey:     getEnv("EMBEDDING_API_KEY"),
		Endpoint:   getEnv("EMBEDDING_ENDPOINT"),
	}

	switch backend {
	case BackendOllama:
		cfg.Model = getEnvOrDefault("EMBEDDING_MODEL", defaultOllamaModel)
		if cfg.Endpoint == "" {
			cfg.Endpoint = getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434")
		}
	case BackendOpenAI:
		cfg.Model = getEnvOrDefault("EMBEDDING_MODEL", defaultOpenAIModel)
		if cfg.APIKey == "" {
			cfg.APIKey = getEnv("OPENAI_API_KEY")
		}
		if cfg.Endpoint == "" {
			cfg.Endpoint = "https://api.openai.com/v1"
		}
	case BackendAzure:
		cfg.Model = getEnvOrDefault("EMBEDDING_MODEL", defaultOpenAIModel)
		if cfg.APIKey == "" {
			cfg.APIKey = getEnv("AZURE_OPENAI_API_KEY")
		}
		if cfg.Endpoint == "" {
			cfg.Endpoint = getEnv("AZURE_OPENAI_ENDPOINT")
		}
		cfg.APIVersion = getEnvOrDefault("AZURE_OPENAI_API_VERSION", "2025-04-01-preview")
	case BackendGemini:
		cfg.Model = getEnvOrDefault("EMBEDDING_MODEL", defaultGeminiModel)
		if cfg.APIKey == "" {
			cfg.APIKey = getEnv("GOOGLE_API_KEY")
		}
	default:
		cfg.Model = getEnv("EMBEDDING_MODEL")
	}

	return cfg
}

// New constructs a rag.Embedder for cfg. cfg is validated first.
func New(ctx context.Context, cfg *Config) (rag.Embedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case BackendOllama:
		return NewOllamaEmbedder(&OllamaConfig{
			Host:       cfg.Endpoint,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		}), nil

	case BackendOpenAI:
		return NewOpenAIEmbedder(&OpenAIConfig{
			BaseURL:    cfg.Endpoint,
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		}), nil

	case BackendAzure:
		return NewOpenAIEmbedder(&OpenAIConfig{
			BaseURL:    cfg.Endpoint + "/openai",
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Azure:      true,
			APIVersion: cfg.APIVersion,
		}), nil

	case BackendGemini:
		return NewGeminiEmbedder(ctx, &GeminiConfig{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})

	default:
		return nil, fmt.Errorf("embedder: unknown backend %q (valid values: ollama, openai, azure, gemini)", cfg.Backend)
	}
}

// NewFromEnv is shorthand for New(ctx, ConfigFromEnv()).
func NewFromEnv(ctx context.Context) (rag.Embedder, error) {
	return New(ctx, ConfigFromEnv())
}

// getEnv returns the value of the named environment variable, or empty string.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
