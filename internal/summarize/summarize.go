// Package summarize condenses free text into a short summary with a single
// instruction prompt.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/54b3r/aimicro-go/internal/apperr"
	"github.com/54b3r/aimicro-go/internal/budget"
	"github.com/54b3r/aimicro-go/internal/logging"
)

// MsgTextRequired is the client-facing rejection for empty input.
const MsgTextRequired = "text is required"

// promptTemplate is filled with the (possibly truncated) input text.
const promptTemplate = "Provide a concise summary of the following text:\n\n{text}\n\nSUMMARY:"

// Config holds the summarizer settings.
type Config struct {
	// MaxInputTokens caps the estimated size of the text placed in the prompt.
	// Longer input is truncated. Defaults to budget.DefaultSummaryInputTokens.
	MaxInputTokens int
}

// Service summarizes text through a chat model.
type Service struct {
	chain          compose.Runnable[map[string]any, *schema.Message]
	maxInputTokens int
}

// New compiles the summarization chain for cm.
func New(ctx context.Context, cm model.BaseChatModel, cfg *Config) (*Service, error) {
	if cm == nil {
		return nil, fmt.Errorf("summarize: chat model must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	maxTokens := cfg.MaxInputTokens
	if maxTokens <= 0 {
		maxTokens = budget.DefaultSummaryInputTokens
	}

	tpl := prompt.FromMessages(schema.FString, schema.UserMessage(promptTemplate))
	chain, err := compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(tpl).
		AppendChatModel(cm).
		Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("summarize: compile chain: %w", err)
	}

	return &Service{chain: chain, maxInputTokens: maxTokens}, nil
}

// Summarize returns a concise summary of text with surrounding whitespace
// removed. Empty or whitespace-only text is rejected.
func (s *Service) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperr.InvalidInput(MsgTextRequired)
	}
	log := logging.FromContext(ctx)

	input, truncated := budget.Truncate(text, s.maxInputTokens)
	if truncated {
		log.Warn("summarize: input truncated to fit prompt budget",
			slog.Int("estimated_tokens", budget.Estimate(text)),
			slog.Int("max_tokens", s.maxInputTokens),
		)
	}

	start := time.Now()
	msg, err := s.chain.Invoke(ctx, map[string]any{"text": input})
	if err != nil {
		return "", apperr.Processing("generate", err)
	}

	summary := strings.TrimSpace(msg.Content)
	log.Debug("summarize: done",
		slog.Int("input_chars", len(text)),
		slog.Int("summary_chars", len(summary)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return summary, nil
}
