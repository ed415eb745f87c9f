package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent      = lipgloss.Color("#8BC34A")
	foreground  = lipgloss.Color("#f2f2f2")
	muted       = lipgloss.Color("#6b7689")
	destructive = lipgloss.Color("#e53935")
)

// Styles groups the lipgloss styles used to draw the form.
type Styles struct {
	Title          lipgloss.Style
	Label          lipgloss.Style
	FocusedLabel   lipgloss.Style
	FieldError     lipgloss.Style
	FormError      lipgloss.Style
	Status         lipgloss.Style
	Button         lipgloss.Style
	FocusedButton  lipgloss.Style
	DisabledButton lipgloss.Style
	Help           lipgloss.Style
	Frame          lipgloss.Style
}

// DefaultStyles returns the standard palette.
func DefaultStyles() Styles {
	button := lipgloss.NewStyle().Padding(0, 2).Foreground(foreground).Background(lipgloss.Color("#2a3850"))
	return Styles{
		Title:          lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		Label:          lipgloss.NewStyle().Foreground(muted),
		FocusedLabel:   lipgloss.NewStyle().Foreground(accent).Bold(true),
		FieldError:     lipgloss.NewStyle().Foreground(destructive).PaddingLeft(2),
		FormError:      lipgloss.NewStyle().Foreground(destructive).Bold(true),
		Status:         lipgloss.NewStyle().Foreground(accent),
		Button:         button,
		FocusedButton:  button.Background(accent).Foreground(lipgloss.Color("#101F38")).Bold(true),
		DisabledButton: button.Foreground(muted).Background(lipgloss.Color("#1e2a3d")),
		Help:           lipgloss.NewStyle().Foreground(muted).MarginTop(1),
		Frame:          lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(1, 2),
	}
}
