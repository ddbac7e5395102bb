package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Q&A tab fields.
const (
	fieldDocument = iota
	fieldQuestion
)

// qaTab uploads a PDF and answers questions about it.
type qaTab struct {
	env      *env
	session  Session
	document textinput.Model
	question textinput.Model
	field    int
	running  bool
	answer   string
	notice   notice
}

func newQATab(e *env) *qaTab {
	doc := textinput.New()
	doc.Prompt = "PDF › "
	doc.Placeholder = "path/to/document.pdf"
	doc.CharLimit = 0

	q := textinput.New()
	q.Prompt = "Ask › "
	q.Placeholder = "Ask a question about the document"
	q.CharLimit = 0

	return &qaTab{env: e, document: doc, question: q}
}

func (t *qaTab) busy() bool { return t.running }

func (t *qaTab) setWidth(w int) {
	t.document.Width = max(20, w-10)
	t.question.Width = max(20, w-10)
}

func (t *qaTab) focus() tea.Cmd {
	if t.field == fieldQuestion {
		t.document.Blur()
		return t.question.Focus()
	}
	t.question.Blur()
	return t.document.Focus()
}

func (t *qaTab) blur() {
	t.document.Blur()
	t.question.Blur()
}

func (t *qaTab) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case uploadMsg:
		return t.uploaded(msg)

	case answerMsg:
		t.running = false
		if msg.err != nil {
			t.notice = failure(msg.err)
			return nil
		}
		t.answer = msg.answer
		t.notice = notice{}
		return nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, t.env.keys.NextField), key.Matches(msg, t.env.keys.PrevField):
			t.field = 1 - t.field
			return t.focus()
		case key.Matches(msg, t.env.keys.Submit):
			if t.field == fieldDocument {
				return t.upload()
			}
			return t.ask()
		}
	}

	var cmd tea.Cmd
	if t.field == fieldDocument {
		t.document, cmd = t.document.Update(msg)
	} else {
		t.question, cmd = t.question.Update(msg)
	}
	return cmd
}

// upload ingests the selected file. A new file name resets the session
// before the upload starts.
func (t *qaTab) upload() tea.Cmd {
	if t.running {
		return nil
	}
	path := strings.TrimSpace(t.document.Value())
	if path == "" {
		t.notice = warning("Please choose a PDF document to upload.")
		return nil
	}
	name := filepath.Base(path)

	if t.session.Select(name) {
		t.answer = ""
	}
	t.running = true
	t.notice = info(fmt.Sprintf("Processing %s... This may take a moment.", name))

	ctx, api := t.env.ctx, t.env.api
	return func() tea.Msg {
		m, err := api.UploadFile(ctx, path)
		return uploadMsg{name: name, message: m, err: err}
	}
}

func (t *qaTab) uploaded(msg uploadMsg) tea.Cmd {
	if !t.session.Complete(msg.name, msg.err) {
		return nil
	}
	t.running = false
	if msg.err != nil {
		t.notice = failure(msg.err)
		return nil
	}
	t.notice = success(msg.message)
	t.field = fieldQuestion
	return t.focus()
}

// ask answers the current question once a document is ready.
func (t *qaTab) ask() tea.Cmd {
	if t.running {
		return nil
	}
	if !t.session.CanAsk() {
		t.notice = info("Please upload a document to begin.")
		return nil
	}
	query := strings.TrimSpace(t.question.Value())
	if query == "" {
		t.notice = warning("Please enter a question.")
		return nil
	}

	t.running = true
	t.answer = ""
	t.notice = info("Searching for the answer...")

	ctx, api := t.env.ctx, t.env.api
	return func() tea.Msg {
		a, err := api.Ask(ctx, query)
		return answerMsg{answer: a, err: err}
	}
}

func (t *qaTab) view() string {
	s := t.env.styles
	var b strings.Builder
	b.WriteString(s.Heading.Render("Q&A Over Your Documents"))
	b.WriteString("\n")
	b.WriteString(s.Muted.Render("Upload a PDF document and ask questions about its content."))
	b.WriteString("\n\n")
	b.WriteString(t.document.View())
	b.WriteString("\n")

	if t.session.CanAsk() {
		b.WriteString(s.Label.Render(fmt.Sprintf("Document '%s' ready! Ask your question.", t.session.FileName)))
		b.WriteString("\n")
		b.WriteString(t.question.View())
		b.WriteString("\n")
	} else {
		b.WriteString(s.Label.Render("Document: " + t.session.State.String()))
		b.WriteString("\n")
	}

	if n := t.notice.render(s); n != "" {
		b.WriteString("\n" + n + "\n")
	}
	if t.answer != "" {
		b.WriteString("\n")
		b.WriteString(s.Info.Render("Answer:"))
		b.WriteString("\n")
		b.WriteString(t.env.markdown(t.answer))
		b.WriteString("\n")
	}
	return b.String()
}
