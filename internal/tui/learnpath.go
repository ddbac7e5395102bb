package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/54b3r/aimicro-go/internal/learnpath"
)

// Learning-path tab fields.
const (
	fieldTopic = iota
	fieldLevel
)

// pathTab generates a learning path for a topic and level.
type pathTab struct {
	env     *env
	topic   textinput.Model
	levels  []string
	level   int
	field   int
	running bool
	path    string
	notice  notice
}

func newPathTab(e *env) *pathTab {
	ti := textinput.New()
	ti.Prompt = "Topic › "
	ti.Placeholder = "e.g. Machine Learning, Quantum Computing"
	ti.CharLimit = 0
	return &pathTab{env: e, topic: ti, levels: learnpath.Levels}
}

func (t *pathTab) busy() bool     { return t.running }
func (t *pathTab) setWidth(w int) { t.topic.Width = max(20, w-12) }
func (t *pathTab) blur()          { t.topic.Blur() }

func (t *pathTab) focus() tea.Cmd {
	if t.field == fieldTopic {
		return t.topic.Focus()
	}
	t.topic.Blur()
	return nil
}

// Level returns the selected level.
func (t *pathTab) Level() string { return t.levels[t.level] }

func (t *pathTab) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case pathMsg:
		t.running = false
		if msg.err != nil {
			t.notice = failure(msg.err)
			return nil
		}
		t.path = msg.path
		t.notice = success("Learning Path Generated!")
		return nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, t.env.keys.NextField), key.Matches(msg, t.env.keys.PrevField):
			t.field = 1 - t.field
			return t.focus()
		case key.Matches(msg, t.env.keys.Submit):
			return t.submit()
		case t.field == fieldLevel && key.Matches(msg, t.env.keys.NextOption):
			t.level = (t.level + 1) % len(t.levels)
			return nil
		case t.field == fieldLevel && key.Matches(msg, t.env.keys.PrevOption):
			t.level = (t.level - 1 + len(t.levels)) % len(t.levels)
			return nil
		}
	}

	if t.field != fieldTopic {
		return nil
	}
	var cmd tea.Cmd
	t.topic, cmd = t.topic.Update(msg)
	return cmd
}

func (t *pathTab) submit() tea.Cmd {
	if t.running {
		return nil
	}
	topic := strings.TrimSpace(t.topic.Value())
	if topic == "" {
		t.notice = warning("Please enter a topic.")
		return nil
	}
	level := t.Level()

	t.running = true
	t.path = ""
	t.notice = info(fmt.Sprintf("Crafting a %s learning path for %s...", level, topic))

	ctx, api := t.env.ctx, t.env.api
	return func() tea.Msg {
		p, err := api.LearningPath(ctx, topic, level)
		return pathMsg{path: p, err: err}
	}
}

func (t *pathTab) view() string {
	s := t.env.styles
	var b strings.Builder
	b.WriteString(s.Heading.Render("Dynamic Learning Path Generator"))
	b.WriteString("\n")
	b.WriteString(s.Muted.Render("Enter a topic and your skill level to get a personalized learning path."))
	b.WriteString("\n\n")
	b.WriteString(t.topic.View())
	b.WriteString("\n")

	levels := make([]string, len(t.levels))
	for i, l := range t.levels {
		if i == t.level {
			levels[i] = s.ActiveTab.Render(l)
		} else {
			levels[i] = s.Tab.Render(l)
		}
	}
	label := "Skill Level:"
	if t.field == fieldLevel {
		label = "Skill Level (←/→):"
	}
	b.WriteString(s.Label.Render(label) + " " + strings.Join(levels, ""))
	b.WriteString("\n")

	if n := t.notice.render(s); n != "" {
		b.WriteString("\n" + n + "\n")
	}
	if t.path != "" {
		b.WriteString("\n")
		b.WriteString(t.env.markdown("### Learning Path\n\n" + FormatLearningPath(t.path)))
		b.WriteString("\n")
	}
	return b.String()
}
