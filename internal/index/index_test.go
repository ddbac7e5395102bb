package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/54b3r/aimicro-go/internal/logging"
	"github.com/54b3r/aimicro-go/internal/rag"
)

// newTestBuilder returns a SQLiteBuilder rooted in a per-test temp directory.
func newTestBuilder(t *testing.T) *SQLiteBuilder {
	t.Helper()
	b, err := NewSQLiteBuilder(filepath.Join(t.TempDir(), "index"))
	if err != nil {
		t.Fatalf("NewSQLiteBuilder: %v", err)
	}
	return b
}

// corpus returns n passages from source with orthogonal-ish 3-d vectors.
func corpus(source string, n int) ([]rag.Passage, [][]float32) {
	ps := make([]rag.Passage, n)
	vs := make([][]float32, n)
	for i := range n {
		ps[i] = rag.Passage{
			ID:       fmt.Sprintf("%s#%d", source, i+1),
			Source:   source,
			Page:     i + 1,
			Content:  fmt.Sprintf("%s page %d", source, i+1),
			Metadata: map[string]string{"page": fmt.Sprint(i + 1)},
		}
		v := make([]float32, 3)
		v[i%3] = 1
		vs[i] = v
	}
	return ps, vs
}

func TestLoad_NoIndex(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t)
	if _, err := b.Load(context.Background()); !errors.Is(err, rag.ErrNoIndex) {
		t.Fatalf("Load err = %v, want rag.ErrNoIndex", err)
	}
}

func TestBuildThenLoad_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := newTestBuilder(t)
	ps, vs := corpus("a.pdf", 3)
	built, err := b.Build(ctx, "ollama/all-minilm/3", ps, vs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if built.Len() != 3 {
		t.Errorf("built.Len = %d, want 3", built.Len())
	}

	loaded, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Fingerprint() != "ollama/all-minilm/3" {
		t.Errorf("fingerprint = %q", loaded.Fingerprint())
	}
	if loaded.Len() != 3 {
		t.Fatalf("loaded.Len = %d, want 3", loaded.Len())
	}

	got, err := loaded.Search(ctx, []float32{0, 1, 0}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a.pdf#2" {
		t.Fatalf("top hit = %+v, want a.pdf#2", got)
	}
	if got[0].Page != 2 || got[0].Metadata["page"] != "2" || got[0].Content != "a.pdf page 2" {
		t.Errorf("passage fields not preserved: %+v", got[0])
	}
	if got[0].Score < 0.99 {
		t.Errorf("score = %v, want ~1", got[0].Score)
	}
}

func TestBuild_SupersedesPrevious(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := newTestBuilder(t)
	a, av := corpus("a.pdf", 3)
	if _, err := b.Build(ctx, "fp", a, av); err != nil {
		t.Fatalf("Build(a): %v", err)
	}
	bp, bv := corpus("b.pdf", 2)
	if _, err := b.Build(ctx, "fp", bp, bv); err != nil {
		t.Fatalf("Build(b): %v", err)
	}

	idx, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, err := idx.Search(ctx, []float32{1, 1, 1}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d passages, want 2", len(got))
	}
	for _, p := range got {
		if p.Source != "b.pdf" {
			t.Errorf("passage from %q survived rebuild", p.Source)
		}
	}
}

func TestBuild_FailureKeepsPrevious(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := newTestBuilder(t)
	a, av := corpus("a.pdf", 2)
	if _, err := b.Build(ctx, "fp", a, av); err != nil {
		t.Fatalf("Build(a): %v", err)
	}

	bad := []rag.Passage{{ID: "x", Source: "bad.pdf"}, {ID: "y", Source: "bad.pdf"}}
	if _, err := b.Build(ctx, "fp", bad, [][]float32{{1, 0, 0}, {1, 0}}); err == nil {
		t.Fatal("expected dimension mismatch error")
	}

	idx, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if idx.Len() != 2 {
		t.Errorf("Len = %d, want previous index of 2", idx.Len())
	}

	entries, err := os.ReadDir(filepath.Dir(b.Path()))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("index dir holds %v, want only %s", names, FileName)
	}
}

func TestSyncDir(t *testing.T) {
	t.Parallel()

	if err := syncDir(t.TempDir()); err != nil {
		t.Errorf("syncDir(existing) = %v, want nil", err)
	}
	if err := syncDir(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("syncDir(missing) = %v, want os.ErrNotExist", err)
	}
}

func TestSnapshot_Search(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ps, vs := corpus("a.pdf", 3)
	s, err := newSnapshot("fp", ps, vs)
	if err != nil {
		t.Fatalf("newSnapshot: %v", err)
	}

	tests := []struct {
		name    string
		query   []float32
		topK    int
		wantIDs []string
		wantErr bool
	}{
		{"best match first", []float32{0, 0, 1}, 1, []string{"a.pdf#3"}, false},
		{"topK above size", []float32{1, 0, 0}, 10, []string{"a.pdf#1", "a.pdf#2", "a.pdf#3"}, false},
		{"zero topK", []float32{1, 0, 0}, 0, nil, false},
		{"dimension mismatch", []float32{1, 0}, 1, nil, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := s.Search(ctx, tc.query, tc.topK)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if len(got) != len(tc.wantIDs) {
				t.Fatalf("got %d results, want %d", len(got), len(tc.wantIDs))
			}
			for i, id := range tc.wantIDs {
				if got[i].ID != id {
					t.Errorf("result[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

// Ollama returns unit vectors while other backends may not; ranking must be
// the same for both.
func TestSnapshot_ScaleInvariant(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ps, _ := corpus("a.pdf", 3)
	raw := [][]float32{{3, 4, 0}, {0, 2, 2}, {5, 0, 1}}
	unit := make([][]float32, len(raw))
	for i, v := range raw {
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		n := float32(math.Sqrt(sum))
		unit[i] = []float32{v[0] / n, v[1] / n, v[2] / n}
	}

	rawSnap, err := newSnapshot("fp", ps, raw)
	if err != nil {
		t.Fatalf("newSnapshot(raw): %v", err)
	}
	unitSnap, err := newSnapshot("fp", ps, unit)
	if err != nil {
		t.Fatalf("newSnapshot(unit): %v", err)
	}

	query := []float32{1, 1, 0}
	a, err := rawSnap.Search(ctx, query, 3)
	if err != nil {
		t.Fatalf("Search(raw): %v", err)
	}
	b, err := unitSnap.Search(ctx, []float32{10, 10, 0}, 3)
	if err != nil {
		t.Fatalf("Search(unit): %v", err)
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Errorf("rank %d: %s vs %s", i, a[i].ID, b[i].ID)
		}
		if d := a[i].Score - b[i].Score; d > 1e-5 || d < -1e-5 {
			t.Errorf("rank %d score: %v vs %v", i, a[i].Score, b[i].Score)
		}
	}
}

func TestVectorCodec(t *testing.T) {
	t.Parallel()

	in := []float32{0, -1.5, 3.25, 1e-7}
	out, err := decodeVector(encodeVector(in))
	if err != nil {
		t.Fatalf("decodeVector: %v", err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("[%d] = %v, want %v", i, out[i], in[i])
		}
	}
	if _, err := decodeVector([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated blob")
	}
}

// TestSlot_ConcurrentIngestAndQuery drives a rag.Slot over the SQLite builder
// with interleaved rebuilds and queries. Every query must see a complete
// index from exactly one source document.
func TestSlot_ConcurrentIngestAndQuery(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := newTestBuilder(t)
	slot := rag.NewSlot(b, "fp", logging.Discard())

	seed, seedV := corpus("seed.pdf", 3)
	if err := slot.Replace(ctx, seed, seedV); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var wg sync.WaitGroup
	for i := range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ps, vs := corpus(fmt.Sprintf("doc-%d.pdf", i), 3)
			if err := slot.Replace(ctx, ps, vs); err != nil {
				t.Errorf("Replace: %v", err)
			}
		}()
	}
	for range 24 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := slot.Search(ctx, []float32{1, 1, 1}, 10)
			if err != nil {
				t.Errorf("Search: %v", err)
				return
			}
			if len(got) != 3 {
				t.Errorf("Search returned %d passages, want a complete index of 3", len(got))
				return
			}
			for _, p := range got[1:] {
				if p.Source != got[0].Source {
					t.Errorf("mixed sources in one result: %s and %s", got[0].Source, p.Source)
				}
			}
		}()
	}
	wg.Wait()

	// The persisted file must match whatever the slot ended on.
	loaded, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != 3 {
		t.Errorf("persisted index has %d passages, want 3", loaded.Len())
	}
}

// TestSlot_RebuildsIndexFromOtherEmbedder covers switching embedding
// provider: the old file is ignored on load and the next ingestion replaces
// it on disk.
func TestSlot_RebuildsIndexFromOtherEmbedder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := newTestBuilder(t)
	old, oldV := corpus("old.pdf", 3)
	if _, err := b.Build(ctx, "openai/text-embedding-3-small/3", old, oldV); err != nil {
		t.Fatalf("seed Build: %v", err)
	}

	slot := rag.NewSlot(b, "ollama/all-minilm/3", logging.Discard())
	if err := slot.Load(ctx); err != nil {
		t.Fatalf("Load with another fingerprint: %v", err)
	}
	if slot.Ready() {
		t.Fatal("slot must stay empty when the persisted index has another fingerprint")
	}

	fresh, freshV := corpus("new.pdf", 2)
	if err := slot.Replace(ctx, fresh, freshV); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	got, err := slot.Search(ctx, []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 || got[0].Source != "new.pdf" {
		t.Errorf("Search = %+v, want new.pdf passages", got)
	}

	loaded, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Fingerprint() != "ollama/all-minilm/3" || loaded.Len() != 2 {
		t.Errorf("persisted index = %s/%d, want ollama/all-minilm/3 with 2 passages", loaded.Fingerprint(), loaded.Len())
	}
}
