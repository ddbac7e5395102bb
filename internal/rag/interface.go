// Package rag defines the retrieval-augmented generation building blocks:
// passages, embedders, and the single-slot similarity index the services
// query. Concrete index backends (the SQLite file in internal/index, Qdrant
// here) satisfy these interfaces so the pipelines never depend on a specific
// backend.
package rag

import (
	"context"
	"errors"
)

// ErrNoIndex is returned when a search is attempted before any document has
// been ingested, or when the persisted index is absent.
var ErrNoIndex = errors.New("rag: no index has been built")

// Passage is a page-level unit of text extracted from a document.
type Passage struct {
	// ID is the stable identifier for this passage within an index.
	ID string

	// Content is the raw text of the page.
	Content string

	// Source is the filename of the document the passage came from.
	Source string

	// Page is the 1-based page number within Source.
	Page int

	// Metadata holds arbitrary key-value pairs carried into the index.
	Metadata map[string]string

	// Score is the similarity score assigned during retrieval.
	// Zero value means the score was not computed.
	Score float32
}

// Embedder is the interface for converting text into dense vector embeddings.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Fingerprint identifies the embedding configuration as
	// "backend/model/dims". Indexes record it at build time.
	Fingerprint() string
}

// Index is a built, read-only similarity index.
type Index interface {
	// Search returns the topK passages most similar to vec, best first.
	Search(ctx context.Context, vec []float32, topK int) ([]Passage, error)

	// Fingerprint returns the embedding fingerprint the index was built with.
	Fingerprint() string

	// Len returns the number of passages in the index.
	Len() int

	// Close releases resources held by the index.
	Close() error
}

// Builder persists indexes for a backend. A Builder owns exactly one slot:
// each Build supersedes whatever was persisted before.
type Builder interface {
	// Build persists a new index from passages and their parallel vectors
	// and returns it opened. The previously persisted index must remain
	// readable until Build returns successfully.
	Build(ctx context.Context, fingerprint string, passages []Passage, vectors [][]float32) (Index, error)

	// Load opens the currently persisted index. It returns ErrNoIndex when
	// nothing has been built yet.
	Load(ctx context.Context) (Index, error)
}

// Searcher is satisfied by anything that can answer a vector query,
// typically a *Slot.
type Searcher interface {
	Search(ctx context.Context, vec []float32, topK int) ([]Passage, error)
}

// Retriever is the high-level interface used by the answering pipeline to
// fetch relevant context for a query. It combines embedding and search.
// Implementations must be safe to call from multiple goroutines.
type Retriever interface {
	// Retrieve returns the top-k most relevant passages for the given query.
	Retrieve(ctx context.Context, query string, topK int) ([]Passage, error)
}
