// Package llmtest provides a scripted chat model for tests of code that
// drives an eino model.BaseChatModel.
package llmtest

import (
	"context"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

var _ model.BaseChatModel = (*ChatModel)(nil)

// ChatModel records every prompt it receives and answers with Reply, or with
// the result of ReplyFunc when set. A non-nil Err fails every call.
type ChatModel struct {
	// Reply is returned as the assistant message content.
	Reply string

	// ReplyFunc, when set, computes the reply from the prompt.
	ReplyFunc func(prompt string) string

	// Err, when set, is returned by every call.
	Err error

	mu    sync.Mutex
	calls [][]*schema.Message
}

// Generate records input and returns the scripted reply.
func (m *ChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	m.calls = append(m.calls, input)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	reply := m.Reply
	if m.ReplyFunc != nil {
		reply = m.ReplyFunc(join(input))
	}
	return schema.AssistantMessage(reply, nil), nil
}

// Stream returns the Generate result as a single-chunk stream.
func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// Calls returns the number of Generate or Stream calls made.
func (m *ChatModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastPrompt returns the contents of the most recent call's messages joined
// by newlines, or "" if the model was never called.
func (m *ChatModel) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return ""
	}
	return join(m.calls[len(m.calls)-1])
}

func join(msgs []*schema.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		parts = append(parts, msg.Content)
	}
	return strings.Join(parts, "\n")
}
