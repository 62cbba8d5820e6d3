package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
)

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

func TestDocumentID(t *testing.T) {
	tests := map[string]string{
		"scheme-research://documents/doc-456": "doc-456",
		"file://documents/doc-456":            "",
		"scheme-research://documents":         "",
		"scheme-research://documents/":        "",
		"scheme-research://documents/a/b":     "",
		"":                                    "",
	}

	for uri, want := range tests {
		assert.Equal(t, want, documentID(uri), uri)
	}
}

func TestReadDocuments(t *testing.T) {
	server := newTestServer(t, &mockRetrievalService{documents: []domain.Document{
		{ID: "doc-1", Title: "Housing Grant", Source: "https://example.gov/housing", Content: "रुपये", Embedding: []float32{1, 2}},
	}})

	result, err := server.readDocuments(context.Background(), readRequest(documentsURI))
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, mimeJSON, result.Contents[0].MIMEType)
	assert.NotContains(t, result.Contents[0].Text, "embedding")

	var got []documentSummary
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &got))
	assert.Equal(t, []documentSummary{
		{ID: "doc-1", Title: "Housing Grant", Source: "https://example.gov/housing", Length: 5},
	}, got)
}

func TestReadDocuments_Empty(t *testing.T) {
	server := newTestServer(t, &mockRetrievalService{})

	result, err := server.readDocuments(context.Background(), readRequest(documentsURI))

	require.NoError(t, err)
	assert.Equal(t, "[]", result.Contents[0].Text)
}

func TestReadHistory(t *testing.T) {
	server := newTestServer(t, &mockRetrievalService{history: []domain.ChatTurn{
		{Seq: 1, Query: "Who is eligible?", Answer: "Small farmers", Source: "https://example.gov/a"},
	}})

	result, err := server.readHistory(context.Background(), readRequest(historyURI))
	require.NoError(t, err)

	var turns []domain.ChatTurn
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &turns))
	require.Len(t, turns, 1)
	assert.Equal(t, "Who is eligible?", turns[0].Query)
	assert.Equal(t, "Small farmers", turns[0].Answer)
}

func TestReadHistory_Empty(t *testing.T) {
	server := newTestServer(t, &mockRetrievalService{})

	result, err := server.readHistory(context.Background(), readRequest(historyURI))

	require.NoError(t, err)
	assert.Equal(t, "[]", result.Contents[0].Text)
}

func TestReadDocument(t *testing.T) {
	server := newTestServer(t, &mockRetrievalService{documents: []domain.Document{
		{ID: "doc-1", Content: "first page"},
		{ID: "doc-2", Content: "second page"},
	}})

	result, err := server.readDocument(context.Background(), readRequest(documentsURI+"/doc-2"))
	require.NoError(t, err)
	assert.Equal(t, "second page", result.Contents[0].Text)
	assert.Equal(t, mimeText, result.Contents[0].MIMEType)

	for _, uri := range []string{documentsURI + "/missing", "other://x"} {
		_, err := server.readDocument(context.Background(), readRequest(uri))
		assert.Error(t, err, uri)
	}
}
