// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui/styles"
)

// Prompt is a labelled single-line input. The label and placeholder change
// with the chat mode (question or URL entry).
type Prompt struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int
}

// Labels and placeholders for the chat modes.
const (
	AskLabel          = "Ask: "
	AskPlaceholder    = "Type a question and press Enter..."
	IngestLabel       = "URLs: "
	IngestPlaceholder = "Paste one or more URLs separated by spaces..."
)

// NewPrompt creates a focused prompt in question mode.
func NewPrompt(s *styles.Styles) *Prompt {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = AskPlaceholder
	ti.Focus()
	ti.CharLimit = 2048
	ti.Width = 50

	return &Prompt{
		textinput: ti,
		styles:    s,
		label:     AskLabel,
		width:     50,
	}
}

// Init starts the cursor blink.
func (p *Prompt) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (p *Prompt) Update(msg tea.Msg) (*Prompt, tea.Cmd) {
	var cmd tea.Cmd
	p.textinput, cmd = p.textinput.Update(msg)
	return p, cmd
}

// View renders the label and input.
func (p *Prompt) View() string {
	label := p.styles.Title.Render(p.label)
	field := p.styles.InputField.Render(p.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// SetMode switches label and placeholder.
func (p *Prompt) SetMode(label, placeholder string) {
	p.label = label
	p.textinput.Placeholder = placeholder
}

// Label returns the current label.
func (p *Prompt) Label() string {
	return p.label
}

// Value returns the current input value.
func (p *Prompt) Value() string {
	return p.textinput.Value()
}

// SetValue sets the input value.
func (p *Prompt) SetValue(value string) {
	p.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (p *Prompt) Focus() tea.Cmd {
	return p.textinput.Focus()
}

// Blur removes focus from the input.
func (p *Prompt) Blur() {
	p.textinput.Blur()
}

// Focused returns whether the input is focused.
func (p *Prompt) Focused() bool {
	return p.textinput.Focused()
}

// SetWidth sets the total width, label and frame included.
func (p *Prompt) SetWidth(width int) {
	p.width = width
	inputWidth := width - lipgloss.Width(p.label) - 6
	if inputWidth < 20 {
		inputWidth = 20
	}
	p.textinput.Width = inputWidth
}

// Width returns the current width.
func (p *Prompt) Width() int {
	return p.width
}

// Reset clears the input.
func (p *Prompt) Reset() {
	p.textinput.Reset()
}
