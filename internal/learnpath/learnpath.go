// Package learnpath generates a step-by-step Markdown learning path for a
// topic at a requested level.
package learnpath

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/54b3r/aimicro-go/internal/apperr"
	"github.com/54b3r/aimicro-go/internal/logging"
)

// MsgTopicRequired is the client-facing rejection for an empty topic.
const MsgTopicRequired = "topic is required"

// DefaultLevel is used when the caller leaves the level empty.
const DefaultLevel = "Beginner"

// Levels are the proficiency levels offered by the interactive client. The
// service accepts any free-form level.
var Levels = []string{"Beginner", "Intermediate", "Advanced"}

const curriculumTemplate = `You are an expert curriculum designer. Create a structured, step-by-step learning path for someone who wants to learn '{topic}' at a '{level}' level.

The path should include core concepts, key skills, project ideas, and recommended resource types. Format the output clearly in Markdown.

LEARNING PATH:`

// Service generates learning paths through a chat model.
type Service struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// New compiles the curriculum chain (template → chat model) for cm.
func New(ctx context.Context, cm model.BaseChatModel) (*Service, error) {
	if cm == nil {
		return nil, fmt.Errorf("learnpath: chat model must not be nil")
	}

	tpl := prompt.FromMessages(schema.FString, schema.UserMessage(curriculumTemplate))
	chain, err := compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(tpl).
		AppendChatModel(cm).
		Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("learnpath: compile chain: %w", err)
	}
	return &Service{chain: chain}, nil
}

// Generate returns the model's learning path for topic at level, unmodified.
func (s *Service) Generate(ctx context.Context, topic, level string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", apperr.InvalidInput(MsgTopicRequired)
	}
	level = strings.TrimSpace(level)
	if level == "" {
		level = DefaultLevel
	}

	msg, err := s.chain.Invoke(ctx, map[string]any{"topic": topic, "level": level})
	if err != nil {
		return "", apperr.Processing("generate", err)
	}

	logging.FromContext(ctx).Debug("learnpath: generated",
		slog.String("topic", topic),
		slog.String("level", level),
		slog.Int("chars", len(msg.Content)),
	)
	return msg.Content, nil
}
