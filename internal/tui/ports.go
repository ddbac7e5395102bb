// Package tui implements the interactive terminal client: three tabs for
// summarization, document Q&A, and learning paths, each calling the aimicro
// HTTP API through an API port.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/54b3r/aimicro-go/internal/client"
)

// ErrMissingAPI is returned when no API implementation is provided.
var ErrMissingAPI = errors.New("tui: api is required")

// API is the subset of the HTTP client the tabs use. *client.Client
// satisfies it.
type API interface {
	Summarize(ctx context.Context, text string) (string, error)
	UploadFile(ctx context.Context, path string) (string, error)
	Ask(ctx context.Context, query string) (string, error)
	LearningPath(ctx context.Context, topic, level string) (string, error)
}

var _ API = (*client.Client)(nil)

// env is shared by the app and every tab.
type env struct {
	ctx      context.Context
	api      API
	styles   *Styles
	keys     *KeyMap
	markdown Markdown
}

// noticeKind selects how a notice is styled.
type noticeKind int

const (
	noticeNone noticeKind = iota
	noticeInfo
	noticeSuccess
	noticeWarning
	noticeError
)

// notice is a one-line status shown under a tab's inputs.
type notice struct {
	kind noticeKind
	text string
}

func info(text string) notice    { return notice{kind: noticeInfo, text: text} }
func success(text string) notice { return notice{kind: noticeSuccess, text: text} }
func warning(text string) notice { return notice{kind: noticeWarning, text: text} }

// failure builds the notice for a failed call.
func failure(err error) notice { return notice{kind: noticeError, text: client.Message(err)} }

func (n notice) render(s *Styles) string {
	var style lipgloss.Style
	switch n.kind {
	case noticeInfo:
		style = s.Info
	case noticeSuccess:
		style = s.Success
	case noticeWarning:
		style = s.Warning
	case noticeError:
		style = s.Error
	default:
		return ""
	}
	return style.Render(n.text)
}

// Result messages delivered when an API call finishes.
type (
	summaryMsg struct {
		summary string
		err     error
	}
	uploadMsg struct {
		name    string
		message string
		err     error
	}
	answerMsg struct {
		answer string
		err    error
	}
	pathMsg struct {
		path string
		err  error
	}
)

// tab is implemented by each of the three views.
type tab interface {
	update(msg tea.Msg) tea.Cmd
	view() string
	focus() tea.Cmd
	blur()
	busy() bool
	setWidth(w int)
}
