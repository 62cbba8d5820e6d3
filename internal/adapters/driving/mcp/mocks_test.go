package mcp

import (
	"context"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driving"
)

var _ driving.RetrievalService = (*mockRetrievalService)(nil)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	turn      domain.ChatTurn
	answerErr error
	report    *domain.IngestReport
	ingestErr error
	history   []domain.ChatTurn
	documents []domain.Document

	lastQuery string
	lastURLs  []string
	lastMode  domain.IngestMode
}

func (m *mockRetrievalService) Ingest(
	_ context.Context, urls []string, mode domain.IngestMode,
) (*domain.IngestReport, error) {
	m.lastURLs = urls
	m.lastMode = mode
	return m.report, m.ingestErr
}

func (m *mockRetrievalService) Answer(_ context.Context, query string) (domain.ChatTurn, error) {
	m.lastQuery = query
	return m.turn, m.answerErr
}

func (m *mockRetrievalService) Save(_ context.Context) error         { return nil }
func (m *mockRetrievalService) Load(_ context.Context) (bool, error) { return false, nil }
func (m *mockRetrievalService) History() []domain.ChatTurn            { return m.history }
func (m *mockRetrievalService) IndexSize() int                        { return len(m.documents) }
func (m *mockRetrievalService) Documents() []domain.Document          { return m.documents }
func (m *mockRetrievalService) StorePath() string                     { return ":memory:" }
