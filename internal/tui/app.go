package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Tab indexes.
const (
	TabSummarize = iota
	TabQA
	TabLearningPath
)

// tabTitles are the labels shown in the tab bar, in index order.
var tabTitles = []string{"1. Text Summarizer", "2. Q&A over Documents", "3. Learning Path Generator"}

// App is the client's root model following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// env is shared with every tab.
	env *env

	// tabs holds the views in index order.
	tabs []tab

	// active is the index of the visible tab.
	active int

	// spinner animates while any call is in flight.
	spinner spinner.Model

	// help renders the key hints footer.
	help help.Model

	// customMarkdown is true when the renderer was supplied by the caller
	// and must not be rebuilt on resize.
	customMarkdown bool

	// width and height are terminal dimensions.
	width  int
	height int
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the client over api.
func NewApp(api API) (*App, error) {
	if api == nil {
		return nil, ErrMissingAPI
	}
	e := &env{
		ctx:      context.Background(),
		api:      api,
		styles:   DefaultStyles(),
		keys:     DefaultKeyMap(),
		markdown: NewMarkdown(defaultWrap),
	}
	return &App{
		env:     e,
		tabs:    []tab{newSummarizeTab(e), newQATab(e), newPathTab(e)},
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
		width:   defaultWrap,
	}, nil
}

// WithContext sets the context passed to every API call.
func (a *App) WithContext(ctx context.Context) *App {
	a.env.ctx = ctx
	return a
}

// WithMarkdown replaces the Markdown renderer.
func (a *App) WithMarkdown(m Markdown) *App {
	a.env.markdown = m
	a.customMarkdown = true
	return a
}

// Active returns the index of the visible tab.
func (a *App) Active() int { return a.active }

// DocState returns the Q&A tab's document state.
func (a *App) DocState() DocState { return a.qa().session.State }

func (a *App) summarize() *summarizeTab { return a.tabs[TabSummarize].(*summarizeTab) }
func (a *App) qa() *qaTab               { return a.tabs[TabQA].(*qaTab) }
func (a *App) paths() *pathTab          { return a.tabs[TabLearningPath].(*pathTab) }

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("aimicro"),
		a.tabs[a.active].focus(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width
		for _, t := range a.tabs {
			t.setWidth(msg.Width)
		}
		if !a.customMarkdown {
			a.env.markdown = NewMarkdown(min(msg.Width-4, 120))
		}
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.env.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.env.keys.NextTab):
			return a, a.switchTo((a.active + 1) % len(a.tabs))
		case key.Matches(msg, a.env.keys.PrevTab):
			return a, a.switchTo((a.active - 1 + len(a.tabs)) % len(a.tabs))
		}
		wasBusy := a.busy()
		cmd := a.tabs[a.active].update(msg)
		if !wasBusy && a.busy() {
			cmd = tea.Batch(cmd, a.spinner.Tick)
		}
		return a, cmd

	case spinner.TickMsg:
		if !a.busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case summaryMsg:
		return a, a.deliver(TabSummarize, msg)
	case uploadMsg:
		return a, a.deliver(TabQA, msg)
	case answerMsg:
		return a, a.deliver(TabQA, msg)
	case pathMsg:
		return a, a.deliver(TabLearningPath, msg)
	}

	return a, a.tabs[a.active].update(msg)
}

// deliver routes a call result to the tab that issued it. A tab that is not
// visible keeps its inputs blurred.
func (a *App) deliver(idx int, msg tea.Msg) tea.Cmd {
	cmd := a.tabs[idx].update(msg)
	if idx != a.active {
		a.tabs[idx].blur()
		return nil
	}
	return cmd
}

// switchTo makes tab idx visible and focuses it.
func (a *App) switchTo(idx int) tea.Cmd {
	a.tabs[a.active].blur()
	a.active = idx
	return a.tabs[idx].focus()
}

// busy reports whether any tab has a call in flight.
func (a *App) busy() bool {
	for _, t := range a.tabs {
		if t.busy() {
			return true
		}
	}
	return false
}

// View implements tea.Model.
func (a *App) View() string {
	s := a.env.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("AI Microservices"))
	b.WriteString("\n")

	titles := make([]string, len(tabTitles))
	for i, t := range tabTitles {
		if i == a.active {
			titles[i] = s.ActiveTab.Render(t)
		} else {
			titles[i] = s.Tab.Render(t)
		}
	}
	b.WriteString(strings.Join(titles, ""))
	b.WriteString("\n\n")

	b.WriteString(a.tabs[a.active].view())
	b.WriteString("\n")

	if a.tabs[a.active].busy() {
		b.WriteString(a.spinner.View() + " ")
	}
	b.WriteString(a.help.View(a.env.keys))
	return b.String()
}
