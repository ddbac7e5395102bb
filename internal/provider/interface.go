// Package provider selects and constructs the chat model behind every
// generation call. Supported backends: OpenRouter (default), OpenAI, Azure
// OpenAI, Ollama, Volcengine Ark, and Google Gemini. Every backend is exposed
// as an eino model.BaseChatModel so callers never depend on a specific SDK.
package provider

import (
	"context"
	"time"
)

// Backend enumerates the supported LLM inference providers.
type Backend string

const (
	// BackendOpenRouter selects the OpenRouter OpenAI-compatible gateway.
	BackendOpenRouter Backend = "openrouter"
	// BackendOpenAI selects the OpenAI API.
	BackendOpenAI Backend = "openai"
	// BackendAzure selects Azure OpenAI Service.
	BackendAzure Backend = "azure"
	// BackendOllama selects a locally running Ollama instance.
	BackendOllama Backend = "ollama"
	// BackendArk selects Volcengine Ark.
	BackendArk Backend = "ark"
	// BackendGemini selects Google Gemini via AI Studio.
	BackendGemini Backend = "gemini"
)

// Config holds all provider-level configuration resolved from environment
// variables or explicit caller-supplied values. Only the block matching
// Backend is consulted.
type Config struct {
	// Backend identifies which inference provider to use.
	Backend Backend

	// OpenRouter holds settings for the openrouter backend.
	OpenRouter ProviderOpenRouter

	// OpenAI holds settings for the openai backend.
	OpenAI ProviderOpenAI

	// AzureOpenAI holds settings for the azure backend.
	AzureOpenAI ProviderAzureOpenAI

	// Ollama holds settings for the ollama backend.
	Ollama ProviderOllama

	// Ark holds settings for the ark backend.
	Ark ProviderArk

	// Gemini holds settings for the gemini backend.
	Gemini ProviderGemini

	// Tuning holds generation settings shared by all backends.
	Tuning SharedTuning
}

// ProviderOpenRouter configures the OpenRouter gateway.
type ProviderOpenRouter struct {
	// APIKey is read from OPENROUTER_API_KEY. There is no default.
	APIKey string
	// Model is the OpenRouter model slug (e.g. "mistralai/mistral-7b-instruct").
	Model string
	// BaseURL is the OpenAI-compatible API root.
	BaseURL string
	// Referer is sent as the HTTP-Referer header for OpenRouter attribution.
	Referer string
	// Title is sent as the X-Title header for OpenRouter attribution.
	Title string
}

// ProviderOpenAI configures the OpenAI API.
type ProviderOpenAI struct {
	// APIKey is read from OPENAI_API_KEY.
	APIKey string
	// Model is the model name (e.g. "gpt-4o-mini").
	Model string
}

// ProviderAzureOpenAI configures Azure OpenAI Service.
type ProviderAzureOpenAI struct {
	// APIKey is read from AZURE_OPENAI_API_KEY.
	APIKey string
	// Endpoint is the resource URL (e.g. "https://my.openai.azure.com").
	Endpoint string
	// Deployment is the deployment name used as the model.
	Deployment string
	// APIVersion is the REST API version (e.g. "2024-02-01").
	APIVersion string
}

// ProviderOllama configures a local Ollama instance.
type ProviderOllama struct {
	// Host is the Ollama base URL.
	Host string
	// Model is the local model tag (e.g. "mistral").
	Model string
}

// ProviderArk configures Volcengine Ark.
type ProviderArk struct {
	// APIKey is read from ARK_API_KEY.
	APIKey string
	// Model is the Ark endpoint ID or model name.
	Model string
	// BaseURL overrides the regional default when set.
	BaseURL string
}

// ProviderGemini configures Google Gemini.
type ProviderGemini struct {
	// APIKey is read from GOOGLE_API_KEY.
	APIKey string
	// Model is the Gemini model name (e.g. "gemini-2.0-flash").
	Model string
}

// SharedTuning holds settings applied to whichever backend is selected.
type SharedTuning struct {
	// MaxTokens caps the number of tokens the model may generate per response.
	MaxTokens int
	// Temperature controls response randomness.
	Temperature float32
	// Timeout bounds each HTTP call to the backend. Zero means no timeout.
	Timeout time.Duration
}

// HealthChecker probes a backend without generating tokens.
type HealthChecker interface {
	// HealthCheck returns nil when the backend is reachable and accepts the
	// configured credentials.
	HealthCheck(ctx context.Context) error
}
