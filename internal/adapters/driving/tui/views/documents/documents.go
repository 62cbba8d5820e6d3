// Package documents provides the indexed documents view for the TUI.
package documents

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driving"
)

// ErrNoRetrievalService is returned when the view has no session to read.
var ErrNoRetrievalService = errors.New("retrieval service is required")

// View lists the indexed documents and shows the content of the opened one.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	list      *list.DocumentList
	content   viewport.Model
	statusbar *status.Bar

	retrieval driving.RetrievalService

	opened *domain.Document
	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new documents view.
func NewView(s *styles.Styles, km *keymap.KeyMap, retrieval driving.RetrievalService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.Show(status.StateBrowsing, "")

	return &View{
		styles:    s,
		keymap:    km,
		list:      list.NewDocumentList(s),
		content:   viewport.New(80, 16),
		statusbar: bar,
		retrieval: retrieval,
		width:     80,
		height:    24,
	}
}

// Init loads the indexed documents.
func (v *View) Init() tea.Cmd {
	return v.Load()
}

// Load returns a command reading the documents from the session.
func (v *View) Load() tea.Cmd {
	return func() tea.Msg {
		if v.retrieval == nil {
			return messages.ErrorOccurred{Err: ErrNoRetrievalService}
		}
		return messages.DocumentsLoaded{Documents: v.retrieval.Documents()}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.DocumentsLoaded:
		v.err = nil
		v.opened = nil
		v.list.SetDocuments(msg.Documents)
		v.statusbar.SetDocumentCount(len(msg.Documents))
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.opened != nil {
		switch {
		case key.Matches(msg, v.keymap.Back):
			v.opened = nil
			return v, nil
		case key.Matches(msg, v.keymap.Documents):
			return v, backToChat
		}
		var cmd tea.Cmd
		v.content, cmd = v.content.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keymap.Back), key.Matches(msg, v.keymap.Documents):
		return v, backToChat
	case key.Matches(msg, v.keymap.Select):
		if doc := v.list.SelectedDocument(); doc != nil {
			v.open(doc)
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func backToChat() tea.Msg {
	return messages.ViewChanged{View: messages.ViewChat}
}

func (v *View) open(doc *domain.Document) {
	opened := *doc
	v.opened = &opened

	header := v.styles.Title.Render(titleOf(doc)) + "\n" + v.styles.Source.Render(doc.Source) + "\n\n"
	body := lipgloss.NewStyle().Width(max(20, v.content.Width)).Render(doc.Content)
	v.content.SetContent(header + body)
	v.content.GotoTop()
}

func titleOf(doc *domain.Document) string {
	if doc.Title == "" {
		return "(untitled)"
	}
	return doc.Title
}

// View renders the documents view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var body string
	switch {
	case v.err != nil:
		body = v.styles.Error.Render(fmt.Sprintf("Error: %v", v.err))
	case v.opened != nil:
		body = v.styles.Border.Render(v.content.View())
	default:
		body = v.list.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render("Indexed documents"),
		"",
		body,
		"",
		v.statusbar.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.list.SetSize(width, height-6)
	v.content.Width = max(20, width-4)
	v.content.Height = max(3, height-8)
	v.statusbar.SetWidth(width)
}

// Documents returns the listed documents.
func (v *View) Documents() []domain.Document {
	return v.list.Documents()
}

// Opened returns the document whose content is shown, or nil.
func (v *View) Opened() *domain.Document {
	return v.opened
}

// Err returns the last error, if any.
func (v *View) Err() error {
	return v.err
}
