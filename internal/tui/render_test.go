package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatLearningPath(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "", want: ""},
		{name: "blank lines only", raw: "\n  \n\t\n", want: ""},
		{name: "single step", raw: "Learn Go", want: "1. Learn Go"},
		{
			name: "blank lines dropped and steps trimmed",
			raw:  "## Week 1\n\n  - Syntax  \n\n- Tooling\n",
			want: "1. ## Week 1\n2. - Syntax\n3. - Tooling",
		},
		{name: "crlf", raw: "a\r\nb\r\n", want: "1. a\n2. b"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatLearningPath(tc.raw))
		})
	}
}

func TestMarkdown(t *testing.T) {
	assert.Equal(t, "**x**", PlainMarkdown("**x**"))

	out := NewMarkdown(40)("# Title\n\nSome *text*.")
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "text")
}

func TestKeyMap_Help(t *testing.T) {
	km := DefaultKeyMap()
	assert.NotEmpty(t, km.ShortHelp())
	assert.Len(t, km.FullHelp(), 3)
}
