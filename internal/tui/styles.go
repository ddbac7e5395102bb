package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette for the client.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success indicates positive outcomes.
	Success lipgloss.Color

	// Warning indicates caution.
	Warning lipgloss.Color

	// Error indicates problems.
	Error lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary: lipgloss.Color("#7C3AED"),
		Muted:   lipgloss.Color("#6C7086"),
		Success: lipgloss.Color("#A6E3A1"),
		Warning: lipgloss.Color("#F9E2AF"),
		Error:   lipgloss.Color("#F38BA8"),
		Border:  lipgloss.Color("#45475A"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	// Title renders the application header.
	Title lipgloss.Style

	// Tab renders an inactive tab label.
	Tab lipgloss.Style

	// ActiveTab renders the selected tab label.
	ActiveTab lipgloss.Style

	// Heading renders a section heading inside a tab.
	Heading lipgloss.Style

	// Label renders a field label.
	Label lipgloss.Style

	// Muted renders hints and secondary text.
	Muted lipgloss.Style

	// Info renders neutral notices.
	Info lipgloss.Style

	// Success renders confirmations.
	Success lipgloss.Style

	// Warning renders input problems the user can fix.
	Warning lipgloss.Style

	// Error renders failed calls.
	Error lipgloss.Style

	// Box frames the result area.
	Box lipgloss.Style
}

// DefaultStyles returns styles built from DefaultTheme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// NewStyles builds styles from t.
func NewStyles(t *Theme) *Styles {
	return &Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(t.Primary).MarginBottom(1),
		Tab:       lipgloss.NewStyle().Foreground(t.Muted).Padding(0, 2),
		ActiveTab: lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Underline(true).Padding(0, 2),
		Heading:   lipgloss.NewStyle().Bold(true),
		Label:     lipgloss.NewStyle().Foreground(t.Muted),
		Muted:     lipgloss.NewStyle().Foreground(t.Muted),
		Info:      lipgloss.NewStyle().Foreground(t.Primary),
		Success:   lipgloss.NewStyle().Foreground(t.Success),
		Warning:   lipgloss.NewStyle().Foreground(t.Warning),
		Error:     lipgloss.NewStyle().Foreground(t.Error),
		Box:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1),
	}
}
