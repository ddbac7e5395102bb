package rag

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/54b3r/aimicro-go/internal/logging"
)

var errBackend = errors.New("backend unavailable")

// memIndex is an in-memory Index that returns its passages in order.
type memIndex struct {
	fingerprint string
	passages    []Passage
	closed      bool
}

func (m *memIndex) Search(_ context.Context, _ []float32, topK int) ([]Passage, error) {
	if topK > len(m.passages) {
		topK = len(m.passages)
	}
	return m.passages[:topK], nil
}
func (m *memIndex) Fingerprint() string { return m.fingerprint }
func (m *memIndex) Len() int            { return len(m.passages) }
func (m *memIndex) Close() error        { m.closed = true; return nil }

// memBuilder is a Builder that keeps the last built index in memory.
type memBuilder struct {
	mu       sync.Mutex
	persist  *memIndex
	buildErr error
	loadErr  error
}

func (b *memBuilder) Build(_ context.Context, fp string, passages []Passage, _ [][]float32) (Index, error) {
	if b.buildErr != nil {
		return nil, b.buildErr
	}
	idx := &memIndex{fingerprint: fp, passages: append([]Passage(nil), passages...)}
	b.mu.Lock()
	b.persist = idx
	b.mu.Unlock()
	return idx, nil
}

func (b *memBuilder) Load(_ context.Context) (Index, error) {
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.persist == nil {
		return nil, ErrNoIndex
	}
	return &memIndex{fingerprint: b.persist.fingerprint, passages: b.persist.passages}, nil
}

func passagesFrom(source string, n int) ([]Passage, [][]float32) {
	ps := make([]Passage, n)
	vs := make([][]float32, n)
	for i := range n {
		ps[i] = Passage{ID: source + "-" + string(rune('a'+i)), Source: source, Page: i + 1, Content: "text"}
		vs[i] = []float32{1, 0}
	}
	return ps, vs
}

func TestSlot_SearchBeforeIngest(t *testing.T) {
	t.Parallel()

	s := NewSlot(&memBuilder{}, "fake/m/2", logging.Discard())
	if s.Ready() {
		t.Fatal("new slot should not be ready")
	}
	if _, err := s.Search(context.Background(), []float32{1, 0}, 4); !errors.Is(err, ErrNoIndex) {
		t.Fatalf("Search err = %v, want ErrNoIndex", err)
	}
}

func TestSlot_ReplaceSupersedes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := NewSlot(&memBuilder{}, "fake/m/2", logging.Discard())

	a, av := passagesFrom("a.pdf", 3)
	if err := s.Replace(ctx, a, av); err != nil {
		t.Fatalf("Replace(a): %v", err)
	}
	b, bv := passagesFrom("b.pdf", 2)
	if err := s.Replace(ctx, b, bv); err != nil {
		t.Fatalf("Replace(b): %v", err)
	}

	got, err := s.Search(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d passages, want 2", len(got))
	}
	for _, p := range got {
		if p.Source != "b.pdf" {
			t.Errorf("passage from %q survived replacement", p.Source)
		}
	}
}

func TestSlot_FailedReplaceKeepsPrevious(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := &memBuilder{}
	s := NewSlot(b, "fake/m/2", logging.Discard())

	a, av := passagesFrom("a.pdf", 1)
	if err := s.Replace(ctx, a, av); err != nil {
		t.Fatalf("Replace(a): %v", err)
	}

	b.buildErr = errors.New("disk full")
	c, cv := passagesFrom("c.pdf", 1)
	if err := s.Replace(ctx, c, cv); err == nil {
		t.Fatal("expected build error")
	}

	got, err := s.Search(ctx, []float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got[0].Source != "a.pdf" {
		t.Errorf("source = %q, want a.pdf", got[0].Source)
	}
}

func TestSlot_ReplaceLengthMismatch(t *testing.T) {
	t.Parallel()

	s := NewSlot(&memBuilder{}, "fake/m/2", logging.Discard())
	p, _ := passagesFrom("a.pdf", 2)
	if err := s.Replace(context.Background(), p, [][]float32{{1, 0}}); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestSlot_Load(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name      string
		persisted *memIndex
		loadErr   error
		wantErr   error
		wantReady bool
	}{
		{name: "nothing persisted", wantReady: false},
		{
			name:      "matching fingerprint",
			persisted: &memIndex{fingerprint: "fake/m/2", passages: []Passage{{ID: "x"}}},
			wantReady: true,
		},
		{
			name:      "different fingerprint is ignored",
			persisted: &memIndex{fingerprint: "other/m/768", passages: []Passage{{ID: "x"}}},
			wantReady: false,
		},
		{
			name:    "backend failure",
			loadErr: errBackend,
			wantErr: errBackend,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := NewSlot(&memBuilder{persist: tc.persisted, loadErr: tc.loadErr}, "fake/m/2", logging.Discard())
			err := s.Load(ctx)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Load err = %v, want %v", err, tc.wantErr)
				}
			} else if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if s.Ready() != tc.wantReady {
				t.Errorf("Ready = %v, want %v", s.Ready(), tc.wantReady)
			}
			if tc.wantReady && s.Len() != 1 {
				t.Errorf("Len = %d, want 1", s.Len())
			}
		})
	}
}

// An index left by another embedding configuration must not block the next
// ingestion from replacing it.
func TestSlot_MismatchedIndexIsReplaced(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := &memBuilder{}
	old, oldV := passagesFrom("old.pdf", 3)
	if _, err := b.Build(ctx, "openai/text-embedding-3-small/1536", old, oldV); err != nil {
		t.Fatalf("seed build: %v", err)
	}

	s := NewSlot(b, "ollama/all-minilm/384", logging.Discard())
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := s.Search(ctx, []float32{1, 0}, 2); !errors.Is(err, ErrNoIndex) {
		t.Fatalf("Search before ingest = %v, want ErrNoIndex", err)
	}

	fresh, freshV := passagesFrom("new.pdf", 2)
	if err := s.Replace(ctx, fresh, freshV); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	got, err := s.Search(ctx, []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 || got[0].Source != "new.pdf" {
		t.Errorf("Search = %+v, want the two new.pdf passages", got)
	}

	reloaded := NewSlot(b, "ollama/all-minilm/384", logging.Discard())
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.Ready() || reloaded.Len() != 2 {
		t.Errorf("reloaded Ready=%v Len=%d, want true 2", reloaded.Ready(), reloaded.Len())
	}
}

func TestSlot_ConcurrentReplaceAndSearch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := NewSlot(&memBuilder{}, "fake/m/2", logging.Discard())
	seed, seedV := passagesFrom("seed.pdf", 2)
	if err := s.Replace(ctx, seed, seedV); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			p, v := passagesFrom("doc.pdf", i%3+1)
			if err := s.Replace(ctx, p, v); err != nil {
				t.Errorf("Replace: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			got, err := s.Search(ctx, []float32{1, 0}, 4)
			if err != nil {
				t.Errorf("Search: %v", err)
				return
			}
			if len(got) == 0 {
				t.Error("Search returned no passages from a live index")
			}
		}()
	}
	wg.Wait()
}
