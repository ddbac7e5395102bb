package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

// summarizeTab condenses pasted text.
type summarizeTab struct {
	env     *env
	input   textarea.Model
	running bool
	summary string
	notice  notice
}

func newSummarizeTab(e *env) *summarizeTab {
	ta := textarea.New()
	ta.Placeholder = "Paste your article, report, or any long text..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(10)
	return &summarizeTab{env: e, input: ta}
}

func (t *summarizeTab) focus() tea.Cmd { return t.input.Focus() }
func (t *summarizeTab) blur()          { t.input.Blur() }
func (t *summarizeTab) busy() bool     { return t.running }
func (t *summarizeTab) setWidth(w int) { t.input.SetWidth(max(20, w-4)) }

func (t *summarizeTab) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case summaryMsg:
		t.running = false
		if msg.err != nil {
			t.notice = failure(msg.err)
			return nil
		}
		t.summary = msg.summary
		t.notice = success("Summary Generated!")
		return nil

	case tea.KeyMsg:
		if key.Matches(msg, t.env.keys.SubmitText) {
			return t.submit()
		}
	}

	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return cmd
}

// submit starts a summarize call for the current input.
func (t *summarizeTab) submit() tea.Cmd {
	if t.running {
		return nil
	}
	text := t.input.Value()
	if strings.TrimSpace(text) == "" {
		t.notice = warning("Please enter some text to summarize.")
		return nil
	}

	t.running = true
	t.summary = ""
	t.notice = info("Summarizing... Please wait.")

	ctx, api := t.env.ctx, t.env.api
	return func() tea.Msg {
		s, err := api.Summarize(ctx, text)
		return summaryMsg{summary: s, err: err}
	}
}

func (t *summarizeTab) view() string {
	s := t.env.styles
	var b strings.Builder
	b.WriteString(s.Heading.Render("Text Summarization"))
	b.WriteString("\n")
	b.WriteString(s.Muted.Render("Paste any text to get a concise summary."))
	b.WriteString("\n\n")
	b.WriteString(t.input.View())
	b.WriteString("\n")
	if n := t.notice.render(s); n != "" {
		b.WriteString("\n" + n + "\n")
	}
	if t.summary != "" {
		b.WriteString("\n")
		b.WriteString(t.env.markdown("> **Summary**: " + t.summary))
		b.WriteString("\n")
	}
	return b.String()
}
