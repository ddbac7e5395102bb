package tui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSession_Transitions(t *testing.T) {
	var s Session
	assert.Equal(t, DocNoDocument, s.State)
	assert.False(t, s.CanAsk())

	assert.True(t, s.Select("a.pdf"), "first selection is a new file")
	assert.Equal(t, DocProcessing, s.State)
	assert.False(t, s.CanAsk())

	assert.True(t, s.Complete("a.pdf", nil))
	assert.Equal(t, DocReady, s.State)
	assert.True(t, s.CanAsk())

	assert.False(t, s.Select("a.pdf"), "same name does not reset")
	assert.Equal(t, DocProcessing, s.State)

	assert.True(t, s.Complete("a.pdf", errors.New("parse failed")))
	assert.Equal(t, DocFailed, s.State)
	assert.False(t, s.CanAsk())

	assert.True(t, s.Select("b.pdf"))
	assert.Equal(t, "b.pdf", s.FileName)
	assert.False(t, s.Complete("a.pdf", nil), "stale outcome ignored")
	assert.Equal(t, DocProcessing, s.State)
}

func TestSession_CompleteWithoutUpload(t *testing.T) {
	var s Session
	assert.False(t, s.Complete("", nil))
	assert.Equal(t, DocNoDocument, s.State)
}

func TestDocState_String(t *testing.T) {
	tests := map[DocState]string{
		DocNoDocument: "no document",
		DocProcessing: "processing",
		DocReady:      "ready",
		DocFailed:     "failed",
	}
	for state, want := range tests {
		assert.Equal(t, want, state.String())
	}
}
