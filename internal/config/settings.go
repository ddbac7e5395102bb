package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Index backends.
const (
	IndexSQLite = "sqlite"
	IndexQdrant = "qdrant"
)

// Settings are the application-level values resolved from the environment
// after Load has applied any YAML file. Model and embedding settings are
// resolved by the provider and embedder packages themselves.
type Settings struct {
	// DataDir is the root for uploaded documents and the SQLite index.
	DataDir string

	// IndexBackend is IndexSQLite or IndexQdrant.
	IndexBackend string

	// Qdrant holds the connection settings used when IndexBackend is IndexQdrant.
	Qdrant QdrantConfig

	// TopK is the number of passages retrieved per question. Zero means the
	// retriever default.
	TopK int

	// SummaryMaxInputTokens caps the summarization prompt input. Zero means
	// the summarizer default.
	SummaryMaxInputTokens int

	// QAMaxContextTokens caps the answering prompt context. Zero means the
	// answerer default.
	QAMaxContextTokens int

	// EmbedBatchSize is the number of passages per embedding request. Zero
	// means the pipeline default.
	EmbedBatchSize int
}

// DocsDir is where uploaded documents are stored.
func (s *Settings) DocsDir() string { return filepath.Join(s.DataDir, "docs") }

// IndexDir is where the SQLite index file lives.
func (s *Settings) IndexDir() string { return filepath.Join(s.DataDir, "index") }

// FromEnv resolves Settings from environment variables:
//
//	DATA_DIR                 (default: ./data)
//	INDEX_BACKEND            sqlite (default) or qdrant
//	QDRANT_HOST              (default: localhost)
//	QDRANT_PORT              (default: 6334)
//	QDRANT_COLLECTION        (default: aimicro-passages)
//	QDRANT_API_KEY, QDRANT_TLS
//	RETRIEVER_TOP_K, SUMMARY_MAX_INPUT_TOKENS, QA_MAX_CONTEXT_TOKENS,
//	EMBED_BATCH_SIZE
func FromEnv() (*Settings, error) {
	s := &Settings{
		DataDir:      getEnvOrDefault("DATA_DIR", "data"),
		IndexBackend: getEnvOrDefault("INDEX_BACKEND", IndexSQLite),
		Qdrant: QdrantConfig{
			Host:       getEnvOrDefault("QDRANT_HOST", "localhost"),
			Collection: getEnvOrDefault("QDRANT_COLLECTION", "aimicro-passages"),
			APIKey:     os.Getenv("QDRANT_API_KEY"),
			TLS:        os.Getenv("QDRANT_TLS") == "true",
		},
	}

	ints := []struct {
		key      string
		dst      *int
		fallback int
	}{
		{"QDRANT_PORT", &s.Qdrant.Port, 6334},
		{"RETRIEVER_TOP_K", &s.TopK, 0},
		{"SUMMARY_MAX_INPUT_TOKENS", &s.SummaryMaxInputTokens, 0},
		{"QA_MAX_CONTEXT_TOKENS", &s.QAMaxContextTokens, 0},
		{"EMBED_BATCH_SIZE", &s.EmbedBatchSize, 0},
	}
	for _, v := range ints {
		n, err := getEnvInt(v.key, v.fallback)
		if err != nil {
			return nil, err
		}
		*v.dst = n
	}

	switch s.IndexBackend {
	case IndexSQLite, IndexQdrant:
	default:
		return nil, fmt.Errorf("config: INDEX_BACKEND %q is not one of %s, %s", s.IndexBackend, IndexSQLite, IndexQdrant)
	}

	return s, nil
}

// getEnvOrDefault returns the env var value or fallback if unset/empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt parses a non-negative integer env var, returning fallback if unset.
func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("config: %s must be a non-negative integer, got %q", key, v)
	}
	return n, nil
}
