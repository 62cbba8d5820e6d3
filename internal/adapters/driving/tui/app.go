package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui/views/documents"
)

// App switches between the chat view, the document list and a help page.
type App struct {
	ports *Ports
	ctx   context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	chatView      *chat.View
	documentsView *documents.View

	currentView  messages.ViewType
	previousView messages.ViewType // restored when help closes

	err error

	width  int
	height int
	ready  bool
}

var _ tea.Model = (*App)(nil)

func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		keymap:        km,
		chatView:      chat.NewView(s, km, ports.Retrieval),
		documentsView: documents.NewView(s, km, ports.Retrieval),
		currentView:   messages.ViewChat,
	}, nil
}

// WithContext sets the context passed to every session call.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("scheme-research"), a.chatView.Init())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil
	case tea.KeyMsg:
		return a, a.handleKey(msg)
	case messages.ViewChanged:
		return a, a.switchTo(msg.View)
	case messages.Quit:
		return a, tea.Quit
	case messages.DocumentsLoaded:
		return a, a.toDocuments(msg)
	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.toActive(msg)
	}

	if ok, err := sessionResult(msg); ok {
		a.err = err
	}
	// Session results, cursor blink and other prompt messages.
	return a, a.toChat(msg)
}

// sessionResult reports whether msg is the outcome of an ask, ingest or
// save, and the error it carries.
func sessionResult(msg tea.Msg) (bool, error) {
	switch m := msg.(type) {
	case messages.AnswerCompleted:
		return true, m.Err
	case messages.IngestCompleted:
		return true, m.Err
	case messages.IndexSaved:
		return true, m.Err
	}
	return false, nil
}

func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	a.currentView = view
	switch view {
	case messages.ViewDocuments:
		return a.documentsView.Init()
	case messages.ViewChat:
		return a.chatView.Focus()
	case messages.ViewHelp:
	}
	return nil
}

func (a *App) toChat(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	a.chatView, cmd = a.chatView.Update(msg)
	return cmd
}

func (a *App) toDocuments(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	a.documentsView, cmd = a.documentsView.Update(msg)
	return cmd
}

// toActive hands msg to the visible view. Help sits on top of chat.
func (a *App) toActive(msg tea.Msg) tea.Cmd {
	if a.currentView == messages.ViewDocuments {
		return a.toDocuments(msg)
	}
	return a.toChat(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	pressed := msg.String()
	inHelp := a.currentView == messages.ViewHelp

	switch {
	case keymap.Matches(pressed, a.keymap.Quit):
		return tea.Quit
	case inHelp && (keymap.Matches(pressed, a.keymap.Back) || keymap.Matches(pressed, a.keymap.Help)):
		a.currentView = a.previousView
		return nil
	case inHelp:
		return nil
	case keymap.Matches(pressed, a.keymap.Help):
		a.previousView = a.currentView
		a.currentView = messages.ViewHelp
		return nil
	}
	return a.toActive(msg)
}

func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewDocuments:
		return a.documentsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewChat:
	}
	return a.chatView.View()
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Chat:
  (type)      Enter a question
  enter       Ask, or load URLs in URL mode
  ctrl+u      Toggle URL mode
  ctrl+s      Save the index
  ↑/↓ pgup    Scroll the transcript
  esc         Clear the prompt or leave URL mode
  tab         Indexed documents

Documents:
  j/k, ↑/↓    Navigate documents
  enter       Open document
  esc         Back

  f1          Toggle help
  ctrl+c      Quit

` + a.styles.Help.Render("[esc] back")
}

// Run blocks until the user quits or the context is cancelled.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err is the error from the most recent session call, if it failed.
func (a *App) Err() error {
	return a.err
}

// Ready reports whether a window size has arrived.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.chatView.SetDimensions(width, height)
	a.documentsView.SetDimensions(width, height)
}
