package chat

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/scheme-research/internal/core/domain"
)

// MockRetrievalService implements driving.RetrievalService for testing.
type MockRetrievalService struct {
	AnswerFunc func(ctx context.Context, query string) (domain.ChatTurn, error)
	IngestFunc func(ctx context.Context, urls []string, mode domain.IngestMode) (*domain.IngestReport, error)
	SaveErr    error
	Turns      []domain.ChatTurn
	Size       int
}

func (m *MockRetrievalService) Ingest(
	ctx context.Context,
	urls []string,
	mode domain.IngestMode,
) (*domain.IngestReport, error) {
	if m.IngestFunc != nil {
		return m.IngestFunc(ctx, urls, mode)
	}
	return &domain.IngestReport{Requested: urls, Loaded: urls, IndexSize: len(urls), Mode: mode}, nil
}

func (m *MockRetrievalService) Answer(ctx context.Context, query string) (domain.ChatTurn, error) {
	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, query)
	}
	return domain.ChatTurn{Query: query, Answer: "an answer"}, nil
}

func (m *MockRetrievalService) Save(_ context.Context) error          { return m.SaveErr }
func (m *MockRetrievalService) Load(_ context.Context) (bool, error)  { return true, nil }
func (m *MockRetrievalService) History() []domain.ChatTurn            { return m.Turns }
func (m *MockRetrievalService) IndexSize() int                        { return m.Size }
func (m *MockRetrievalService) Documents() []domain.Document          { return nil }
func (m *MockRetrievalService) StorePath() string                     { return "/data/index.json" }

func newReadyView(svc *MockRetrievalService) *View {
	v := NewView(nil, nil, svc)
	v.SetDimensions(100, 30)
	return v
}

func typeInto(v *View, text string) *View {
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return v
}

func TestNewView(t *testing.T) {
	svc := &MockRetrievalService{
		Size:  2,
		Turns: []domain.ChatTurn{{Seq: 1, Query: "earlier question", Answer: "earlier answer"}},
	}

	v := NewView(nil, nil, svc)

	require.NotNil(t, v)
	assert.False(t, v.Ready())
	assert.Equal(t, "Initialising...", v.View())
	assert.Contains(t, v.Transcript(), "earlier question")
	assert.Contains(t, v.Transcript(), "2 document(s) indexed")
}

func TestView_Init(t *testing.T) {
	v := NewView(nil, nil, &MockRetrievalService{})

	assert.NotNil(t, v.Init())
}

func TestView_WindowSize(t *testing.T) {
	v := NewView(nil, nil, &MockRetrievalService{})

	v, _ = v.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.True(t, v.Ready())
	assert.Contains(t, v.View(), "scheme-research")
	assert.Contains(t, v.View(), "Ask:")
}

func TestView_AskFlow(t *testing.T) {
	svc := &MockRetrievalService{
		AnswerFunc: func(_ context.Context, query string) (domain.ChatTurn, error) {
			return domain.ChatTurn{
				Seq:     1,
				Query:   query,
				Answer:  "Farmers with land",
				Source:  "https://a.example/scheme",
				Summary: "The scheme supports farmers.",
			}, nil
		},
	}
	v := newReadyView(svc)
	v = typeInto(v, "who is eligible?")

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, v.Busy())
	assert.Equal(t, status.StateThinking, v.Status())
	assert.Empty(t, v.Input())

	msg := cmd()
	completed, ok := msg.(messages.AnswerCompleted)
	require.True(t, ok)
	assert.Equal(t, "who is eligible?", completed.Query)

	v, _ = v.Update(completed)
	assert.False(t, v.Busy())
	assert.Equal(t, status.StateReady, v.Status())
	transcript := v.Transcript()
	assert.Contains(t, transcript, "who is eligible?")
	assert.Contains(t, transcript, "Farmers with land")
	assert.Contains(t, transcript, "https://a.example/scheme")
	assert.Contains(t, transcript, "The scheme supports farmers.")
}

func TestView_UnansweredTurnHasNoSource(t *testing.T) {
	v := newReadyView(&MockRetrievalService{})

	v, _ = v.Update(messages.AnswerCompleted{
		Query: "anything?",
		Turn:  domain.ChatTurn{Query: "anything?", Answer: domain.NoRelevantInformation},
	})

	assert.Contains(t, v.Transcript(), domain.NoRelevantInformation)
	assert.NotContains(t, v.Transcript(), "Source:")
}

func TestView_EnterIgnoresBlankInput(t *testing.T) {
	v := newReadyView(&MockRetrievalService{})
	v = typeInto(v, "   ")

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, v.Busy())
}

func TestView_EnterIgnoredWhileBusy(t *testing.T) {
	v := newReadyView(&MockRetrievalService{})
	v = typeInto(v, "first")
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v = typeInto(v, "second")

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Equal(t, "second", v.Input())
}

func TestView_AnswerError(t *testing.T) {
	v := newReadyView(&MockRetrievalService{})

	v, _ = v.Update(messages.AnswerCompleted{Query: "q", Err: domain.ErrSynthesis})

	assert.ErrorIs(t, v.Err(), domain.ErrSynthesis)
	assert.Equal(t, status.StateError, v.Status())
	assert.Contains(t, v.Transcript(), "synthesis")
}

func TestView_IngestFlow(t *testing.T) {
	var gotMode domain.IngestMode
	var gotURLs []string
	svc := &MockRetrievalService{
		IngestFunc: func(_ context.Context, urls []string, mode domain.IngestMode) (*domain.IngestReport, error) {
			gotURLs, gotMode = urls, mode
			return &domain.IngestReport{
				Requested: urls,
				Loaded:    urls[:1],
				Skipped:   urls[1:],
				IndexSize: 5,
				Mode:      mode,
			}, nil
		},
	}
	v := newReadyView(svc)

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	require.True(t, v.IngestMode())
	assert.Contains(t, v.View(), "URLs:")

	v = typeInto(v, "https://a.example https://b.example")
	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, v.IngestMode())
	assert.Equal(t, status.StateIngesting, v.Status())

	v, _ = v.Update(cmd())

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, gotURLs)
	assert.Equal(t, domain.IngestMerge, gotMode)
	assert.Contains(t, v.Transcript(), "Loaded 1 of 2 URL(s)")
	assert.Contains(t, v.Transcript(), "Skipped https://b.example")
	assert.Contains(t, v.View(), "5 document(s) indexed")
}

func TestView_IngestError(t *testing.T) {
	svc := &MockRetrievalService{
		IngestFunc: func(context.Context, []string, domain.IngestMode) (*domain.IngestReport, error) {
			return nil, domain.ErrNoDocuments
		},
	}
	v := newReadyView(svc)
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	v = typeInto(v, "https://down.example")

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v, _ = v.Update(cmd())

	assert.ErrorIs(t, v.Err(), domain.ErrNoDocuments)
	assert.Contains(t, v.Transcript(), "Ingest failed")
}

func TestView_EscLeavesIngestModeThenClears(t *testing.T) {
	v := newReadyView(&MockRetrievalService{})
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	v = typeInto(v, "https://a.example")

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, v.IngestMode())
	assert.Equal(t, "https://a.example", v.Input())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, v.Input())
}

func TestView_Save(t *testing.T) {
	v := newReadyView(&MockRetrievalService{})

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)

	msg := cmd()
	saved, ok := msg.(messages.IndexSaved)
	require.True(t, ok)
	assert.Equal(t, "/data/index.json", saved.Path)

	v, _ = v.Update(saved)
	assert.Equal(t, status.StateSaved, v.Status())
	assert.Contains(t, v.View(), "Saved to /data/index.json")
}

func TestView_SaveError(t *testing.T) {
	v := newReadyView(&MockRetrievalService{SaveErr: errors.New("disk full")})

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	v, _ = v.Update(cmd())

	assert.Equal(t, status.StateError, v.Status())
	assert.EqualError(t, v.Err(), "disk full")
}

func TestView_TabOpensDocuments(t *testing.T) {
	v := newReadyView(&MockRetrievalService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.NotNil(t, cmd)

	assert.Equal(t, messages.ViewChanged{View: messages.ViewDocuments}, cmd())
}

func TestView_NilRetrieval(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.SetDimensions(80, 24)
	v.SetInput("question")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(messages.ErrorOccurred)
	require.True(t, ok)
	assert.ErrorIs(t, msg.Err, ErrNoRetrievalService)

	v, _ = v.Update(msg)
	assert.False(t, v.Busy())
	assert.Equal(t, status.StateError, v.Status())
}

func TestView_WithContext(t *testing.T) {
	v := NewView(nil, nil, &MockRetrievalService{})

	assert.Equal(t, v, v.WithContext(context.Background()))
}
