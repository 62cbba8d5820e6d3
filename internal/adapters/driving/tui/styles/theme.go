// Package styles holds the lipgloss palette and styles of the chat TUI.
package styles

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the palette. Each colour has a light and a dark terminal variant.
type Theme struct {
	Name string

	Accent  lipgloss.AdaptiveColor // titles and questions
	Link    lipgloss.AdaptiveColor // source URLs
	Text    lipgloss.AdaptiveColor
	Dim     lipgloss.AdaptiveColor // summaries, hints, status text
	Good    lipgloss.AdaptiveColor
	Caution lipgloss.AdaptiveColor // session notes
	Bad     lipgloss.AdaptiveColor
	Frame   lipgloss.AdaptiveColor
	Bar     lipgloss.AdaptiveColor
}

func adaptive(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// DefaultTheme is a teal and amber palette.
func DefaultTheme() *Theme {
	return &Theme{
		Name:    "default",
		Accent:  adaptive("#0F766E", "#2DD4BF"),
		Link:    adaptive("#1D4ED8", "#93C5FD"),
		Text:    adaptive("#1F2937", "#E5E7EB"),
		Dim:     adaptive("#6B7280", "#9CA3AF"),
		Good:    adaptive("#15803D", "#86EFAC"),
		Caution: adaptive("#B45309", "#FCD34D"),
		Bad:     adaptive("#B91C1C", "#FCA5A5"),
		Frame:   adaptive("#D1D5DB", "#4B5563"),
		Bar:     adaptive("#F3F4F6", "#111827"),
	}
}

// MonochromeTheme leaves every colour to the terminal.
func MonochromeTheme() *Theme {
	none := adaptive("", "")
	return &Theme{
		Name: "mono", Accent: none, Link: none, Text: none, Dim: none,
		Good: none, Caution: none, Bad: none, Frame: none, Bar: none,
	}
}

// Styles are the rendered roles used by the views.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style

	// Chat turn parts.
	Question lipgloss.Style
	Answer   lipgloss.Style
	Source   lipgloss.Style
	Summary  lipgloss.Style

	// Note is for session events like ingestion reports.
	Note lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style
}

// NewStyles builds styles for theme, or the default theme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	framed := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Frame).
		Padding(0, 1)

	return &Styles{
		theme:      theme,
		Title:      fg(theme.Accent).Bold(true),
		Normal:     fg(theme.Text),
		Muted:      fg(theme.Dim),
		Selected:   fg(theme.Accent).Bold(true).Reverse(true),
		Error:      fg(theme.Bad),
		Success:    fg(theme.Good),
		Question:   fg(theme.Accent).Bold(true),
		Answer:     fg(theme.Text),
		Source:     fg(theme.Link).Underline(true),
		Summary:    fg(theme.Dim).Italic(true),
		Note:       fg(theme.Caution),
		InputField: framed,
		StatusBar:  fg(theme.Dim).Background(theme.Bar).Padding(0, 1),
		Help:       fg(theme.Dim),
		Border:     framed,
	}
}

// DefaultStyles honours NO_COLOR (https://no-color.org).
func DefaultStyles() *Styles {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return NewStyles(MonochromeTheme())
	}
	return NewStyles(DefaultTheme())
}

func (s *Styles) Theme() *Theme {
	return s.theme
}
