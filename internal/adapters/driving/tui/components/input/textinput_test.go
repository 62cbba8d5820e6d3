package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui/styles"
)

func typeText(p *Prompt, text string) *Prompt {
	for _, r := range text {
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return p
}

func TestNewPrompt(t *testing.T) {
	p := NewPrompt(styles.DefaultStyles())

	require.NotNil(t, p)
	assert.True(t, p.Focused())
	assert.Equal(t, AskLabel, p.Label())
	assert.Empty(t, p.Value())
}

func TestNewPrompt_NilStyles(t *testing.T) {
	p := NewPrompt(nil)

	assert.NotNil(t, p.styles)
}

func TestPrompt_Init(t *testing.T) {
	assert.NotNil(t, NewPrompt(nil).Init())
}

func TestPrompt_Typing(t *testing.T) {
	p := typeText(NewPrompt(nil), "who is eligible")

	assert.Equal(t, "who is eligible", p.Value())

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "who is eligibl", p.Value())
}

func TestPrompt_SetMode(t *testing.T) {
	p := NewPrompt(nil)

	p.SetMode(IngestLabel, IngestPlaceholder)

	assert.Equal(t, IngestLabel, p.Label())
	assert.Contains(t, p.View(), "URLs:")
}

func TestPrompt_FocusBlur(t *testing.T) {
	p := NewPrompt(nil)

	p.Blur()
	assert.False(t, p.Focused())

	p.Focus()
	assert.True(t, p.Focused())
}

func TestPrompt_SetWidth(t *testing.T) {
	p := NewPrompt(nil)

	p.SetWidth(100)
	assert.Equal(t, 100, p.Width())
	assert.Equal(t, 100-len(AskLabel)-6, p.textinput.Width)

	p.SetWidth(10)
	assert.Equal(t, 20, p.textinput.Width)
}

func TestPrompt_SetValueAndReset(t *testing.T) {
	p := NewPrompt(nil)

	p.SetValue("https://a.example")
	assert.Equal(t, "https://a.example", p.Value())

	p.Reset()
	assert.Empty(t, p.Value())
}
