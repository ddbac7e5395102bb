package index

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/54b3r/aimicro-go/internal/rag"
)

// snapshot is an immutable in-memory copy of one built index. Searches are
// an exact cosine scan, which is adequate for the passages of one document.
type snapshot struct {
	fingerprint string
	dims        int
	entries     []entry
}

// entry pairs a passage with its vector and precomputed norm.
type entry struct {
	passage rag.Passage
	vec     []float32
	norm    float64
}

func newSnapshot(fingerprint string, passages []rag.Passage, vectors [][]float32) (*snapshot, error) {
	s := &snapshot{fingerprint: fingerprint, entries: make([]entry, len(passages))}
	for i, p := range passages {
		v := vectors[i]
		if s.dims == 0 {
			s.dims = len(v)
		} else if len(v) != s.dims {
			return nil, fmt.Errorf("index: passage %s has %d dimensions, want %d", p.ID, len(v), s.dims)
		}
		s.entries[i] = entry{passage: p, vec: v, norm: norm(v)}
	}
	return s, nil
}

// Search ranks every passage by cosine similarity to vec and returns the
// best topK. Ties keep ingestion order.
func (s *snapshot) Search(_ context.Context, vec []float32, topK int) ([]rag.Passage, error) {
	if len(s.entries) == 0 || topK <= 0 {
		return nil, nil
	}
	if len(vec) != s.dims {
		return nil, fmt.Errorf("index: query has %d dimensions, index has %d", len(vec), s.dims)
	}

	qn := norm(vec)
	scored := make([]rag.Passage, len(s.entries))
	for i, e := range s.entries {
		p := e.passage
		p.Score = cosine(vec, qn, e.vec, e.norm)
		scored[i] = p
	}

	slices.SortStableFunc(scored, func(a, b rag.Passage) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

func (s *snapshot) Fingerprint() string { return s.fingerprint }
func (s *snapshot) Len() int            { return len(s.entries) }
func (s *snapshot) Close() error        { return nil }

func norm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, na float64, b []float32, nb float64) float32 {
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return float32(dot / (na * nb))
}
