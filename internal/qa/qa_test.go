package qa

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/54b3r/aimicro-go/internal/apperr"
	"github.com/54b3r/aimicro-go/internal/llmtest"
	"github.com/54b3r/aimicro-go/internal/rag"
)

// stubRetriever returns fixed passages and records the requested topK.
type stubRetriever struct {
	passages []rag.Passage
	err      error
	topK     int
}

func (s *stubRetriever) Retrieve(_ context.Context, _ string, topK int) ([]rag.Passage, error) {
	s.topK = topK
	return s.passages, s.err
}

type readiness bool

func (r readiness) Ready() bool { return bool(r) }

func newAnswerer(t *testing.T, r rag.Retriever, ready bool, cm *llmtest.ChatModel, cfg *Config) *Answerer {
	t.Helper()
	a, err := New(context.Background(), r, readiness(ready), cm, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestAnswer_StuffsPassagesInOrder(t *testing.T) {
	t.Parallel()

	r := &stubRetriever{passages: []rag.Passage{
		{Content: "The capital of Freedonia is Fredville."},
		{Content: "Freedonia exports cheese."},
	}}
	cm := &llmtest.ChatModel{Reply: "  Fredville.  "}
	a := newAnswerer(t, r, true, cm, nil)

	got, err := a.Answer(context.Background(), "What is the capital of Freedonia?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if got != "Fredville." {
		t.Errorf("answer = %q", got)
	}
	if r.topK != rag.DefaultTopK {
		t.Errorf("topK = %d, want %d", r.topK, rag.DefaultTopK)
	}

	p := cm.LastPrompt()
	first := strings.Index(p, "capital of Freedonia is Fredville")
	second := strings.Index(p, "exports cheese")
	if first < 0 || second < 0 || first > second {
		t.Errorf("passages missing or out of rank order in prompt: %q", p)
	}
	if !strings.Contains(p, "Question: What is the capital of Freedonia?") {
		t.Errorf("question missing from prompt: %q", p)
	}
}

func TestAnswer_Preconditions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		query       string
		ready       bool
		retrieveErr error
		wantClass   error
		wantDetail  string
	}{
		{"empty query", "  ", true, nil, apperr.ErrInvalidInput, MsgQueryRequired},
		{"no document", "q", false, nil, apperr.ErrPrecondition, MsgNoDocument},
		{"index vanished", "q", true, rag.ErrNoIndex, apperr.ErrPrecondition, MsgNoDocument},
		{"retrieval failure", "q", true, errors.New("embedder offline"), apperr.ErrProcessing, "embedder offline"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cm := &llmtest.ChatModel{Reply: "x"}
			a := newAnswerer(t, &stubRetriever{err: tc.retrieveErr}, tc.ready, cm, nil)

			_, err := a.Answer(context.Background(), tc.query)
			if !errors.Is(err, tc.wantClass) {
				t.Fatalf("err = %v, want %v", err, tc.wantClass)
			}
			if !strings.Contains(apperr.Detail(err), tc.wantDetail) {
				t.Errorf("detail = %q, want %q", apperr.Detail(err), tc.wantDetail)
			}
			if cm.Calls() != 0 {
				t.Error("model called despite failed precondition")
			}
		})
	}
}

func TestAnswer_DropsPassagesOverBudget(t *testing.T) {
	t.Parallel()

	big := strings.Repeat("a", 400) // ~100 tokens
	r := &stubRetriever{passages: []rag.Passage{
		{Content: "TOP " + big},
		{Content: "SECOND " + big},
		{Content: "THIRD " + big},
	}}
	cm := &llmtest.ChatModel{Reply: "ok"}
	a := newAnswerer(t, r, true, cm, &Config{TopK: 3, MaxContextTokens: 210})

	if _, err := a.Answer(context.Background(), "q"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	p := cm.LastPrompt()
	if !strings.Contains(p, "TOP") || !strings.Contains(p, "SECOND") {
		t.Error("highest-ranked passages should be kept")
	}
	if strings.Contains(p, "THIRD") {
		t.Error("lowest-ranked passage should be dropped")
	}
}

func TestAnswer_GenerationError(t *testing.T) {
	t.Parallel()

	r := &stubRetriever{passages: []rag.Passage{{Content: "ctx"}}}
	a := newAnswerer(t, r, true, &llmtest.ChatModel{Err: errors.New("upstream 503")}, nil)

	_, err := a.Answer(context.Background(), "q")
	if !errors.Is(err, apperr.ErrProcessing) {
		t.Fatalf("err = %v, want ProcessingError", err)
	}
}

func TestNew_NilDeps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cm := &llmtest.ChatModel{}

	if _, err := New(ctx, nil, readiness(true), cm, nil); err == nil {
		t.Error("expected error for nil retriever")
	}
	if _, err := New(ctx, &stubRetriever{}, nil, cm, nil); err == nil {
		t.Error("expected error for nil index")
	}
	if _, err := New(ctx, &stubRetriever{}, readiness(true), nil, nil); err == nil {
		t.Error("expected error for nil model")
	}
}
