package tui

import (
	"context"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
)

type mockRetrievalService struct {
	docs    []domain.Document
	turns   []domain.ChatTurn
	saveErr error
}

func (m *mockRetrievalService) Ingest(
	_ context.Context,
	urls []string,
	mode domain.IngestMode,
) (*domain.IngestReport, error) {
	return &domain.IngestReport{Requested: urls, Loaded: urls, IndexSize: len(m.docs) + len(urls), Mode: mode}, nil
}

func (m *mockRetrievalService) Answer(_ context.Context, query string) (domain.ChatTurn, error) {
	turn := domain.ChatTurn{
		Seq:     len(m.turns) + 1,
		Query:   query,
		Answer:  "answer to " + query,
		Source:  "https://a.example/scheme",
		Summary: "summary",
	}
	m.turns = append(m.turns, turn)
	return turn, nil
}

func (m *mockRetrievalService) Save(context.Context) error         { return m.saveErr }
func (m *mockRetrievalService) Load(context.Context) (bool, error) { return true, nil }
func (m *mockRetrievalService) History() []domain.ChatTurn         { return m.turns }
func (m *mockRetrievalService) IndexSize() int                     { return len(m.docs) }
func (m *mockRetrievalService) Documents() []domain.Document       { return m.docs }
func (m *mockRetrievalService) StorePath() string                  { return "/data/index.json" }
