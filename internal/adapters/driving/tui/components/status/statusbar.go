// Package status renders the one-line bar under the chat and document views.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui/styles"
)

// State is what the session is doing, as far as the bar is concerned.
type State string

const (
	StateReady     State = "ready"
	StateThinking  State = "thinking"
	StateIngesting State = "ingesting"
	StateSaved     State = "saved"
	StateError     State = "error"
	StateBrowsing  State = "browsing"
)

// busyLabels are shown while a request is in flight.
var busyLabels = map[State]string{
	StateThinking:  "Thinking...",
	StateIngesting: "Ingesting...",
}

// Bar shows the session state on the left and key hints on the right.
type Bar struct {
	styles *styles.Styles
	keys   *keymap.KeyMap

	state  State
	detail string
	docs   int
	width  int
}

func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keys: km, state: StateReady, width: 80}
}

func (b *Bar) Init() tea.Cmd { return nil }

// Update ignores input; callers drive the bar through Show and Reset.
func (b *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) { return b, nil }

// Show switches to state. detail is the saved path for StateSaved and the
// error text for StateError; other states ignore it.
func (b *Bar) Show(state State, detail string) {
	b.state = state
	b.detail = detail
}

// Reset returns to StateReady. The document count is kept.
func (b *Bar) Reset() {
	b.Show(StateReady, "")
}

func (b *Bar) State() State { return b.state }

func (b *Bar) Detail() string { return b.detail }

func (b *Bar) DocumentCount() int { return b.docs }

func (b *Bar) SetDocumentCount(n int) { b.docs = n }

func (b *Bar) Width() int { return b.width }

func (b *Bar) SetWidth(w int) { b.width = w }

func (b *Bar) View() string {
	left, right := b.status(), b.hints()
	gap := max(1, b.width-lipgloss.Width(left)-lipgloss.Width(right))
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b *Bar) status() string {
	if label, ok := busyLabels[b.state]; ok {
		return b.styles.Muted.Render(label)
	}

	switch b.state {
	case StateSaved:
		return b.styles.Success.Render(withDetail("Saved", " to ", b.detail))
	case StateError:
		return b.styles.Error.Render(withDetail("Error", ": ", b.detail))
	default:
		return b.styles.Normal.Render(fmt.Sprintf("%d document(s) indexed", b.docs))
	}
}

func withDetail(label, sep, detail string) string {
	if detail == "" {
		return label
	}
	return label + sep + detail
}

func (b *Bar) hints() string {
	bindings := b.keys.ShortHelp()
	if b.state == StateBrowsing {
		bindings = b.keys.DocumentsHelp()
	}
	return b.styles.Muted.Render(joinHints(bindings))
}

func joinHints(bindings []key.Binding) string {
	parts := make([]string, len(bindings))
	for i, binding := range bindings {
		h := binding.Help()
		parts[i] = h.Key + ": " + h.Desc
	}
	return strings.Join(parts, " | ")
}
