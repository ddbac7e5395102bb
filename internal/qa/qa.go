// Package qa answers questions about the ingested document. It retrieves the
// most similar passages, places them verbatim into a single prompt, and asks
// the chat model to answer from that context.
package qa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/54b3r/aimicro-go/internal/apperr"
	"github.com/54b3r/aimicro-go/internal/budget"
	"github.com/54b3r/aimicro-go/internal/logging"
	"github.com/54b3r/aimicro-go/internal/rag"
)

// Client-facing rejections.
const (
	MsgQueryRequired = "query is required"
	MsgNoDocument    = "No document has been processed. Please upload a document first."
)

// answerTemplate is the "stuff" prompt: every retrieved passage goes into
// {context} in rank order.
const answerTemplate = `Use the following pieces of context to answer the question at the end. If you don't know the answer, just say that you don't know, don't try to make up an answer.

{context}

Question: {question}
Helpful Answer:`

// Readiness reports whether a queryable index exists. *rag.Slot satisfies it.
type Readiness interface {
	Ready() bool
}

// Config holds the answering pipeline settings.
type Config struct {
	// TopK is the number of passages retrieved per question.
	// Defaults to rag.DefaultTopK.
	TopK int

	// MaxContextTokens caps the estimated size of the passages placed in the
	// prompt. Defaults to budget.DefaultContextTokens.
	MaxContextTokens int
}

// Answerer runs retrieval-augmented question answering.
type Answerer struct {
	retriever        rag.Retriever
	index            Readiness
	chain            compose.Runnable[map[string]any, *schema.Message]
	topK             int
	maxContextTokens int
}

// New compiles the answer chain for cm. retriever must embed queries with the
// same embedder used at ingestion.
func New(ctx context.Context, retriever rag.Retriever, index Readiness, cm model.BaseChatModel, cfg *Config) (*Answerer, error) {
	if retriever == nil {
		return nil, fmt.Errorf("qa: retriever must not be nil")
	}
	if index == nil {
		return nil, fmt.Errorf("qa: index must not be nil")
	}
	if cm == nil {
		return nil, fmt.Errorf("qa: chat model must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	a := &Answerer{
		retriever:        retriever,
		index:            index,
		topK:             cfg.TopK,
		maxContextTokens: cfg.MaxContextTokens,
	}
	if a.topK <= 0 {
		a.topK = rag.DefaultTopK
	}
	if a.maxContextTokens <= 0 {
		a.maxContextTokens = budget.DefaultContextTokens
	}

	tpl := prompt.FromMessages(schema.FString, schema.UserMessage(answerTemplate))
	chain, err := compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(tpl).
		AppendChatModel(cm).
		Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("qa: compile chain: %w", err)
	}
	a.chain = chain

	return a, nil
}

// Answer returns the model's answer to query grounded in the current index.
// It fails with a precondition error when no document has been ingested.
func (a *Answerer) Answer(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", apperr.InvalidInput(MsgQueryRequired)
	}
	if !a.index.Ready() {
		return "", apperr.Precondition(MsgNoDocument)
	}
	log := logging.FromContext(ctx)

	passages, err := a.retriever.Retrieve(ctx, query, a.topK)
	if errors.Is(err, rag.ErrNoIndex) {
		return "", apperr.Precondition(MsgNoDocument)
	}
	if err != nil {
		return "", apperr.Processing("retrieve", err)
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Content
	}
	kept := budget.Fit(texts, a.maxContextTokens)
	if dropped := len(texts) - len(kept); dropped > 0 {
		log.Warn("qa: dropped lowest-ranked passages to fit context budget",
			slog.Int("dropped", dropped),
			slog.Int("retained", len(kept)),
			slog.Int("max_tokens", a.maxContextTokens),
		)
	}

	msg, err := a.chain.Invoke(ctx, map[string]any{
		"context":  strings.Join(kept, "\n\n"),
		"question": query,
	})
	if err != nil {
		return "", apperr.Processing("generate", err)
	}

	log.Debug("qa: answered",
		slog.Int("passages", len(kept)),
		slog.Int("answer_chars", len(msg.Content)),
	)
	return strings.TrimSpace(msg.Content), nil
}
