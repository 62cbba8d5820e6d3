// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driving"
)

// entry is one block of the transcript: an answered turn or a session note.
type entry struct {
	turn  *domain.ChatTurn
	note  string
	isErr bool
}

// View is the chat view: a scrolling transcript above a prompt and status bar.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.Prompt
	transcript viewport.Model
	statusbar  *status.Bar

	retrieval driving.RetrievalService
	ctx       context.Context

	entries    []entry
	width      int
	height     int
	ready      bool
	busy       bool
	ingestMode bool
	err        error
}

// NewView creates a new chat view. Turns already in the session history are
// shown in the transcript.
func NewView(s *styles.Styles, km *keymap.KeyMap, retrieval driving.RetrievalService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewPrompt(s),
		transcript: viewport.New(80, 16),
		statusbar:  status.NewBar(s, km),
		retrieval:  retrieval,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}

	if retrieval != nil {
		for _, turn := range retrieval.History() {
			v.appendTurn(turn)
		}
		v.statusbar.SetDocumentCount(retrieval.IndexSize())
		v.appendNote(fmt.Sprintf("%d document(s) indexed. Press ctrl+u to add URLs.", retrieval.IndexSize()), false)
	}

	return v
}

// WithContext sets the context passed to the session.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		v.handleAnswer(msg)
		return v, nil

	case messages.IngestCompleted:
		v.handleIngest(msg)
		return v, nil

	case messages.IndexSaved:
		v.handleSaved(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.busy = false
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Documents):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewDocuments}
		}

	case key.Matches(msg, v.keymap.Ingest):
		v.setIngestMode(!v.ingestMode)
		return v, nil

	case key.Matches(msg, v.keymap.Save):
		if v.busy {
			return v, nil
		}
		v.busy = true
		return v, v.save()

	case key.Matches(msg, v.keymap.Back):
		if v.ingestMode {
			v.setIngestMode(false)
		} else {
			v.input.Reset()
		}
		return v, nil

	case key.Matches(msg, v.keymap.Ask):
		return v.submit()

	case key.Matches(msg, v.keymap.Up, v.keymap.Down, v.keymap.PageUp, v.keymap.PageDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) submit() (*View, tea.Cmd) {
	text := strings.TrimSpace(v.input.Value())
	if text == "" || v.busy {
		return v, nil
	}
	v.input.Reset()
	v.busy = true

	if v.ingestMode {
		urls := strings.Fields(text)
		v.statusbar.Show(status.StateIngesting, "")
		v.appendNote(fmt.Sprintf("Loading %d URL(s)...", len(urls)), false)
		v.setIngestMode(false)
		return v, v.ingest(urls)
	}

	v.statusbar.Show(status.StateThinking, "")
	return v, v.ask(text)
}

func (v *View) ask(query string) tea.Cmd {
	return func() tea.Msg {
		if v.retrieval == nil {
			return messages.ErrorOccurred{Err: ErrNoRetrievalService}
		}
		turn, err := v.retrieval.Answer(v.ctx, query)
		return messages.AnswerCompleted{Query: query, Turn: turn, Err: err}
	}
}

func (v *View) ingest(urls []string) tea.Cmd {
	return func() tea.Msg {
		if v.retrieval == nil {
			return messages.ErrorOccurred{Err: ErrNoRetrievalService}
		}
		report, err := v.retrieval.Ingest(v.ctx, urls, domain.IngestMerge)
		return messages.IngestCompleted{URLs: urls, Report: report, Err: err}
	}
}

func (v *View) save() tea.Cmd {
	return func() tea.Msg {
		if v.retrieval == nil {
			return messages.ErrorOccurred{Err: ErrNoRetrievalService}
		}
		err := v.retrieval.Save(v.ctx)
		return messages.IndexSaved{Path: v.retrieval.StorePath(), Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerCompleted) {
	v.busy = false
	if msg.Err != nil {
		v.appendNote(fmt.Sprintf("%s: %v", msg.Query, msg.Err), true)
		v.setError(msg.Err)
		return
	}
	v.err = nil
	v.statusbar.Reset()
	v.appendTurn(msg.Turn)
}

func (v *View) handleIngest(msg messages.IngestCompleted) {
	v.busy = false
	if msg.Err != nil {
		v.appendNote(fmt.Sprintf("Ingest failed: %v", msg.Err), true)
		v.setError(msg.Err)
		return
	}
	v.err = nil
	v.statusbar.Reset()

	report := msg.Report
	if report == nil {
		return
	}
	v.statusbar.SetDocumentCount(report.IndexSize)
	v.appendNote(fmt.Sprintf("Loaded %d of %d URL(s). Index now holds %d document(s).",
		len(report.Loaded), len(report.Requested), report.IndexSize), false)
	for _, skipped := range report.Skipped {
		v.appendNote("Skipped "+skipped, true)
	}
}

func (v *View) handleSaved(msg messages.IndexSaved) {
	v.busy = false
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	v.err = nil
	v.statusbar.Show(status.StateSaved, msg.Path)
}

func (v *View) setError(err error) {
	v.err = err
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	v.statusbar.Show(status.StateError, detail)
}

func (v *View) setIngestMode(on bool) {
	v.ingestMode = on
	if on {
		v.input.SetMode(input.IngestLabel, input.IngestPlaceholder)
	} else {
		v.input.SetMode(input.AskLabel, input.AskPlaceholder)
	}
	v.input.SetWidth(v.width)
}

func (v *View) appendTurn(turn domain.ChatTurn) {
	v.entries = append(v.entries, entry{turn: &turn})
	v.refreshTranscript()
}

func (v *View) appendNote(note string, isErr bool) {
	v.entries = append(v.entries, entry{note: note, isErr: isErr})
	v.refreshTranscript()
}

func (v *View) refreshTranscript() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	width := v.transcript.Width
	if width < 20 {
		width = 20
	}
	wrap := lipgloss.NewStyle().Width(width)

	blocks := make([]string, 0, len(v.entries))
	for _, e := range v.entries {
		if e.turn == nil {
			style := v.styles.Note
			if e.isErr {
				style = v.styles.Error
			}
			blocks = append(blocks, wrap.Render(style.Render(e.note)))
			continue
		}
		blocks = append(blocks, v.renderTurn(e.turn, wrap))
	}
	return strings.Join(blocks, "\n\n")
}

func (v *View) renderTurn(turn *domain.ChatTurn, wrap lipgloss.Style) string {
	lines := []string{
		wrap.Render(v.styles.Question.Render("> " + turn.Query)),
		wrap.Render(v.styles.Answer.Render(turn.Answer)),
	}
	if turn.Answered() {
		lines = append(lines,
			wrap.Render(v.styles.Muted.Render("Source: ")+v.styles.Source.Render(turn.Source)),
			wrap.Render(v.styles.Summary.Render(turn.Summary)),
		)
	}
	return strings.Join(lines, "\n")
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("scheme-research"),
		v.styles.Border.Render(v.transcript.View()),
		v.input.View(),
		v.statusbar.View(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	// Title, prompt and status bar take six lines; the transcript frame two more.
	v.transcript.Width = max(20, width-4)
	v.transcript.Height = max(3, height-8)
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refreshTranscript()
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Busy reports whether a question, ingest or save is in flight.
func (v *View) Busy() bool {
	return v.busy
}

// IngestMode reports whether the prompt takes URLs instead of questions.
func (v *View) IngestMode() bool {
	return v.ingestMode
}

// Input returns the current prompt text.
func (v *View) Input() string {
	return v.input.Value()
}

// SetInput sets the prompt text.
func (v *View) SetInput(text string) {
	v.input.SetValue(text)
}

// Transcript returns the rendered transcript.
func (v *View) Transcript() string {
	return v.renderTranscript()
}

// Status returns the status bar state.
func (v *View) Status() status.State {
	return v.statusbar.State()
}

// Err returns the last error, if any.
func (v *View) Err() error {
	return v.err
}

// Focus returns focus to the prompt.
func (v *View) Focus() tea.Cmd {
	return v.input.Focus()
}
