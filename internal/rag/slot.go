package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Slot owns the single similarity index the services query. Builds are
// serialized; readers keep using the previous index until a new one has been
// persisted and swapped in, so a query never observes a half-built index.
type Slot struct {
	// builder persists and loads indexes for the configured backend.
	builder Builder

	// fingerprint is the embedding configuration of the running process.
	fingerprint string

	// buildMu serializes Replace calls.
	buildMu sync.Mutex

	// mu guards current.
	mu sync.RWMutex

	// current is the live index, nil until a build or load succeeds.
	current Index

	// log receives swap and load events.
	log *slog.Logger
}

// NewSlot returns an empty Slot backed by builder. fingerprint must be the
// Fingerprint of the embedder used for both ingestion and queries.
func NewSlot(builder Builder, fingerprint string, log *slog.Logger) *Slot {
	if log == nil {
		log = slog.Default()
	}
	return &Slot{builder: builder, fingerprint: fingerprint, log: log}
}

// Load opens the persisted index, if any. A missing index leaves the slot
// empty and is not an error. An index built with another embedding
// configuration is not valid for this process: it is closed, the slot stays
// empty, and the next Replace overwrites it.
func (s *Slot) Load(ctx context.Context) error {
	idx, err := s.builder.Load(ctx)
	if errors.Is(err, ErrNoIndex) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("rag: load index: %w", err)
	}
	if got := idx.Fingerprint(); got != s.fingerprint {
		_ = idx.Close()
		s.log.Warn("rag: ignoring index built with a different embedding configuration; ingest a document to rebuild it",
			"index_fingerprint", got,
			"embedder_fingerprint", s.fingerprint,
		)
		return nil
	}

	s.swap(idx)
	s.log.Info("rag: index loaded", "passages", idx.Len(), "fingerprint", s.fingerprint)
	return nil
}

// Replace builds a new index from passages and their parallel vectors and
// makes it the live one. On failure the previous index stays live.
func (s *Slot) Replace(ctx context.Context, passages []Passage, vectors [][]float32) error {
	if len(passages) != len(vectors) {
		return fmt.Errorf("rag: %d passages but %d vectors", len(passages), len(vectors))
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	idx, err := s.builder.Build(ctx, s.fingerprint, passages, vectors)
	if err != nil {
		return fmt.Errorf("rag: build index: %w", err)
	}

	s.swap(idx)
	s.log.Info("rag: index replaced", "passages", idx.Len())
	return nil
}

// swap installs idx and closes the index it supersedes once no reader holds it.
func (s *Slot) swap(idx Index) {
	s.mu.Lock()
	old := s.current
	s.current = idx
	s.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			s.log.Warn("rag: close superseded index", "error", err)
		}
	}
}

// Search queries the live index. It returns ErrNoIndex if nothing has been
// ingested yet.
func (s *Slot) Search(ctx context.Context, vec []float32, topK int) ([]Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, ErrNoIndex
	}
	return s.current.Search(ctx, vec, topK)
}

// Ready reports whether a valid index is live.
func (s *Slot) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// Len returns the number of passages in the live index, 0 when empty.
func (s *Slot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return 0
	}
	return s.current.Len()
}

// Fingerprint returns the embedding configuration the slot accepts.
func (s *Slot) Fingerprint() string {
	return s.fingerprint
}

// Close releases the live index.
func (s *Slot) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	err := s.current.Close()
	s.current = nil
	return err
}
