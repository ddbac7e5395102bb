package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// defaultWrap is the word-wrap width used before the terminal size is known.
const defaultWrap = 80

// Markdown renders Markdown for display in the terminal.
type Markdown func(content string) string

// NewMarkdown returns a glamour-backed renderer wrapping at width. Content
// that fails to render is shown as-is.
func NewMarkdown(width int) Markdown {
	if width <= 0 {
		width = defaultWrap
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return PlainMarkdown
	}
	return func(content string) string {
		out, err := r.Render(content)
		if err != nil {
			return content
		}
		return strings.TrimRight(out, "\n")
	}
}

// PlainMarkdown returns content unchanged.
func PlainMarkdown(content string) string { return content }

// FormatLearningPath numbers every non-empty line of raw, trimming each
// step. Blank lines are dropped.
func FormatLearningPath(raw string) string {
	var b strings.Builder
	n := 0
	for _, line := range strings.Split(raw, "\n") {
		step := strings.TrimSpace(line)
		if step == "" {
			continue
		}
		n++
		if n > 1 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", n, step)
	}
	return b.String()
}
