package rag

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestVersionedName(t *testing.T) {
	t.Parallel()

	a, b := versionedName("passages"), versionedName("passages")
	if a == b {
		t.Fatal("versioned names must be unique per build")
	}
	if !strings.HasPrefix(a, "passages-") {
		t.Errorf("name %q lacks alias prefix", a)
	}
}

func TestPointID(t *testing.T) {
	t.Parallel()

	id := uuid.NewString()
	if got := pointID(id); got != id {
		t.Errorf("pointID kept UUID %q as %q", id, got)
	}

	h1, h2 := pointID("report.pdf#3"), pointID("report.pdf#3")
	if h1 != h2 {
		t.Error("pointID must be deterministic")
	}
	if _, err := uuid.Parse(h1); err != nil {
		t.Errorf("pointID(%q) = %q is not a UUID", "report.pdf#3", h1)
	}
}

func TestNewQdrantBuilder_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewQdrantBuilder(&QdrantConfig{VectorSize: 384}); err == nil {
		t.Error("expected error for missing collection")
	}
	if _, err := NewQdrantBuilder(&QdrantConfig{Collection: "passages"}); err == nil {
		t.Error("expected error for missing vector size")
	}
}
