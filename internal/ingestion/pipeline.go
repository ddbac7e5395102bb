// Package ingestion implements the document ingestion pipeline. It stores an
// uploaded PDF, splits it into page passages, embeds each passage, and
// replaces the similarity index with one covering only that document. This
// pipeline backs POST /api/upload-document and the `aimicro ingest` command.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/54b3r/aimicro-go/internal/apperr"
	"github.com/54b3r/aimicro-go/internal/document"
	"github.com/54b3r/aimicro-go/internal/rag"
)

// DefaultBatchSize is the number of passages sent per embedding call.
const DefaultBatchSize = 32

// errNoText is the cause reported for documents without extractable text.
var errNoText = errors.New("no extractable text")

// Replacer swaps in a new similarity index. *rag.Slot satisfies it.
type Replacer interface {
	Replace(ctx context.Context, passages []rag.Passage, vectors [][]float32) error
}

// Config holds the configuration for the ingestion pipeline.
type Config struct {
	// BatchSize is the maximum number of passages per embedding request.
	// Defaults to DefaultBatchSize if zero.
	BatchSize int
}

// Result describes a completed ingestion.
type Result struct {
	// Document is the stored upload.
	Document *document.Document

	// Pages is the number of pages in the PDF.
	Pages int

	// Passages is the number of passages indexed (non-empty pages).
	Passages int

	// Duration is the wall time of the whole ingestion.
	Duration time.Duration
}

// Message is the client-facing confirmation for a successful ingestion.
func (r *Result) Message() string {
	return fmt.Sprintf("Document '%s' processed successfully.", r.Document.Name)
}

// Pipeline orchestrates the save → parse → embed → index flow.
type Pipeline struct {
	// docs stores uploaded files.
	docs *document.Store

	// extractor turns a stored file into page text.
	extractor document.Extractor

	// embedder converts passages into dense vector embeddings.
	embedder rag.Embedder

	// index receives the newly built passages.
	index Replacer

	// cfg holds the resolved pipeline configuration.
	cfg *Config
}

// NewPipeline constructs a Pipeline from the provided dependencies and config.
func NewPipeline(docs *document.Store, extractor document.Extractor, embedder rag.Embedder, index Replacer, cfg *Config) (*Pipeline, error) {
	if docs == nil {
		return nil, fmt.Errorf("ingestion: document store must not be nil")
	}
	if extractor == nil {
		return nil, fmt.Errorf("ingestion: extractor must not be nil")
	}
	if embedder == nil {
		return nil, fmt.Errorf("ingestion: embedder must not be nil")
	}
	if index == nil {
		return nil, fmt.Errorf("ingestion: index must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	return &Pipeline{
		docs:      docs,
		extractor: extractor,
		embedder:  embedder,
		index:     index,
		cfg:       cfg,
	}, nil
}

// Ingest stores r under filename and rebuilds the index from it. A filename
// that does not end in .pdf is rejected before anything is written. Any
// failure after that is a processing error and leaves the previous index
// in place. Progress is reported via the optional progress callback.
func (p *Pipeline) Ingest(ctx context.Context, filename string, r io.Reader, progress func(msg string)) (*Result, error) {
	if progress == nil {
		progress = func(string) {}
	}
	start := time.Now()

	if _, err := document.CleanName(filename); err != nil {
		return nil, err
	}

	doc, err := p.docs.Save(filename, r)
	if err != nil {
		return nil, apperr.Processing("save", err)
	}
	progress(fmt.Sprintf("saved %s (%d bytes)", doc.Name, doc.Size))

	pages, err := p.extractor.Pages(doc.Path)
	if err != nil {
		return nil, apperr.Processing("parse", err)
	}
	passages := document.Passages(doc, pages)
	if len(passages) == 0 {
		return nil, apperr.Processing("parse", fmt.Errorf("%s: %w", doc.Name, errNoText))
	}
	progress(fmt.Sprintf("split %s into %d passages from %d pages", doc.Name, len(passages), len(pages)))

	vectors, err := p.embed(ctx, passages, progress)
	if err != nil {
		return nil, apperr.Processing("embed", err)
	}

	if err := p.index.Replace(ctx, passages, vectors); err != nil {
		return nil, apperr.Processing("index", err)
	}
	progress(fmt.Sprintf("indexed %d passages from %s", len(passages), doc.Name))

	return &Result{
		Document: doc,
		Pages:    len(pages),
		Passages: len(passages),
		Duration: time.Since(start),
	}, nil
}

// embed embeds passages in batches of cfg.BatchSize and returns vectors
// parallel to passages.
func (p *Pipeline) embed(ctx context.Context, passages []rag.Passage, progress func(string)) ([][]float32, error) {
	vectors := make([][]float32, 0, len(passages))
	for start := 0; start < len(passages); start += p.cfg.BatchSize {
		end := min(start+p.cfg.BatchSize, len(passages))

		texts := make([]string, 0, end-start)
		for _, ps := range passages[start:end] {
			texts = append(texts, ps.Content)
		}

		batch, err := p.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("batch %d-%d: expected %d embeddings, got %d", start, end, len(texts), len(batch))
		}
		vectors = append(vectors, batch...)
		progress(fmt.Sprintf("embedded %d/%d passages", end, len(passages)))
	}
	return vectors, nil
}
