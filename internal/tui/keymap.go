package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the client.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// NextTab moves to the next tab.
	NextTab key.Binding

	// PrevTab moves to the previous tab.
	PrevTab key.Binding

	// NextField moves focus to the next field in the tab.
	NextField key.Binding

	// PrevField moves focus to the previous field in the tab.
	PrevField key.Binding

	// Submit runs the action for the focused single-line field.
	Submit key.Binding

	// SubmitText runs the action for a multi-line field, where enter
	// inserts a newline.
	SubmitText key.Binding

	// NextOption cycles a choice field forward.
	NextOption key.Binding

	// PrevOption cycles a choice field backward.
	PrevOption key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev tab"),
		),
		NextField: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "prev field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		SubmitText: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "submit"),
		),
		NextOption: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "next level"),
		),
		PrevOption: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "prev level"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.NextField, k.Submit, k.SubmitText, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab},
		{k.NextField, k.PrevField, k.NextOption, k.PrevOption},
		{k.Submit, k.SubmitText, k.Quit},
	}
}
