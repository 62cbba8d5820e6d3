package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/scheme-research/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/scheme-research/internal/adapters/driven/qa/lexical"
	"github.com/custodia-labs/scheme-research/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/services"
)

func TestServer_SharesHistoryWithHTTP(t *testing.T) {
	ctx := context.Background()
	session, err := services.NewRetrievalSession(
		hashing.NewEmbeddingService(0), nil,
		services.NewExtractiveSynthesizer(lexical.New(), 200), nil, domain.MetricEuclidean,
	)
	require.NoError(t, err)

	mcpServer, err := NewServer(&Ports{Retrieval: session})
	require.NoError(t, err)
	api, err := httpapi.NewServer(session, httpapi.WithMount("/mcp", mcpServer.Handler()))
	require.NoError(t, err)
	h := api.Handler()

	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader([]byte(`{"question":"over http"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	_, _, err = mcpServer.handleAsk(ctx, nil, AskInput{Question: "over mcp"})
	require.NoError(t, err)

	_, history, err := mcpServer.handleHistory(ctx, nil, HistoryInput{})
	require.NoError(t, err)
	require.Equal(t, 2, history.Count)
	assert.Equal(t, "over http", history.Turns[0].Question)
	assert.Equal(t, "over mcp", history.Turns[1].Question)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var turns []httpapi.TurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &turns))
	require.Len(t, turns, 2)
	assert.Equal(t, 1, turns[0].Seq)
	assert.Equal(t, 2, turns[1].Seq)
	assert.Equal(t, "over mcp", turns[1].Question)
}
