// Package embedder provides implementations of the rag.Embedder interface for
// converting text into dense vector embeddings. Each implementation talks to a
// different backend: OpenAI, Azure OpenAI and Ollama over their REST APIs,
// Gemini through the google.golang.org/genai SDK.
package embedder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// openaiTimeout bounds one hosted embeddings request.
const openaiTimeout = 30 * time.Second

// OpenAIEmbedder implements rag.Embedder against the OpenAI embeddings API or
// an Azure OpenAI deployment of it. It is safe for concurrent use.
type OpenAIEmbedder struct {
	// endpoint is the fully built embeddings URL.
	endpoint string

	// header carries the credentials for every request.
	header http.Header

	// model is sent in the request body. For Azure it is also the deployment.
	model string

	// dimensions, when positive, is requested from the API and enforced on
	// the response.
	dimensions int

	// backend is BackendOpenAI or BackendAzure; it prefixes the fingerprint.
	backend string

	client *http.Client
}

// OpenAIConfig holds the settings for constructing an OpenAIEmbedder.
type OpenAIConfig struct {
	// BaseURL is "https://api.openai.com/v1" for OpenAI, or
	// "https://<resource>.openai.azure.com/openai" for Azure.
	BaseURL string
	// APIKey is the authentication key.
	APIKey string
	// Model is the embedding model name, or the deployment name on Azure.
	Model string
	// Dimensions is the vector length (0 = model default, unchecked).
	Dimensions int
	// Azure selects the deployment URL, api-version param and api-key header.
	Azure bool
	// APIVersion is the Azure OpenAI API version (e.g. "2025-04-01-preview").
	APIVersion string
}

// NewOpenAIEmbedder constructs an OpenAIEmbedder from the given config.
func NewOpenAIEmbedder(cfg *OpenAIConfig) *OpenAIEmbedder {
	base := strings.TrimRight(cfg.BaseURL, "/")
	e := &OpenAIEmbedder{
		endpoint:   base + "/embeddings",
		header:     http.Header{},
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		backend:    BackendOpenAI,
		client:     newHTTPClient(openaiTimeout),
	}
	if cfg.Azure {
		e.backend = BackendAzure
		e.endpoint = base + "/deployments/" + url.PathEscape(cfg.Model) +
			"/embeddings?" + url.Values{"api-version": {cfg.APIVersion}}.Encode()
		e.header.Set("api-key", cfg.APIKey)
	} else {
		e.header.Set("Authorization", "Bearer "+cfg.APIKey)
	}
	return e
}

// openaiEmbedRequest is the JSON body sent to the embeddings endpoint.
type openaiEmbedRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions,omitempty"`
}

// openaiEmbedResponse is the JSON body returned from the embeddings endpoint.
type openaiEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// openaiErrorResponse is the error envelope shared by OpenAI and Azure.
type openaiErrorResponse struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Embed converts a batch of texts into their corresponding embeddings.
// The API may return items in any order; the result is parallel to texts.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var result openaiEmbedResponse
	req := openaiEmbedRequest{Input: texts, Model: e.model, Dimensions: e.dimensions}
	if err := postJSON(ctx, e.client, e.endpoint, e.header, req, &result, openaiError); err != nil {
		return nil, fmt.Errorf("%s embedder: %w", e.backend, err)
	}

	if len(result.Data) != len(texts) {
		return nil, fmt.Errorf("%s embedder: expected %d embeddings, got %d", e.backend, len(texts), len(result.Data))
	}

	embeddings := make([][]float32, len(texts))
	for _, d := range result.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("%s embedder: index %d out of range [0, %d)", e.backend, d.Index, len(texts))
		}
		if embeddings[d.Index] != nil {
			return nil, fmt.Errorf("%s embedder: duplicate index %d", e.backend, d.Index)
		}
		embeddings[d.Index] = d.Embedding
	}
	if err := checkDimensions(embeddings, e.dimensions); err != nil {
		return nil, fmt.Errorf("%s embedder: %w", e.backend, err)
	}
	return embeddings, nil
}

// openaiError extracts the message from an OpenAI-style error body.
func openaiError(body []byte) string {
	var r openaiErrorResponse
	if json.Unmarshal(body, &r) != nil || r.Error == nil {
		return ""
	}
	return r.Error.Message
}

// Fingerprint returns "openai/<model>/<dims>" or "azure/<model>/<dims>".
func (e *OpenAIEmbedder) Fingerprint() string {
	return fingerprint(e.backend, e.model, e.dimensions)
}
