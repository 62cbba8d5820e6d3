package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
)

const (
	uriScheme    = "scheme-research://"
	documentsURI = uriScheme + "documents"
	historyURI   = uriScheme + "history"
	mimeJSON     = "application/json"
	mimeText     = "text/plain"
)

// documentSummary is one entry of the documents resource. Embeddings are
// left out; they are large and meaningless to a client.
type documentSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Source string `json:"source"`
	Length int    `json:"length"`
}

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         documentsURI,
		Name:        "documents",
		Description: "Pages currently held in the index",
		MIMEType:    mimeJSON,
	}, s.readDocuments)

	s.server.AddResource(&mcp.Resource{
		URI:         historyURI,
		Name:        "history",
		Description: "Questions answered in this session, oldest first",
		MIMEType:    mimeJSON,
	}, s.readHistory)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: documentsURI + "/{documentId}",
		Name:        "document-content",
		Description: "Extracted text of an indexed page",
		MIMEType:    mimeText,
	}, s.readDocument)
}

func (s *Server) readDocuments(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	docs := s.ports.Retrieval.Documents()
	out := make([]documentSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentSummary{
			ID:     d.ID,
			Title:  d.Title,
			Source: d.Source,
			Length: utf8.RuneCountInString(d.Content),
		})
	}
	return jsonResult(req.Params.URI, out)
}

func (s *Server) readHistory(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	turns := s.ports.Retrieval.History()
	if turns == nil {
		turns = []domain.ChatTurn{}
	}
	return jsonResult(req.Params.URI, turns)
}

func (s *Server) readDocument(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	id := documentID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	for _, d := range s.ports.Retrieval.Documents() {
		if d.ID != id {
			continue
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{URI: req.Params.URI, MIMEType: mimeText, Text: d.Content}},
		}, nil
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: mimeJSON, Text: string(data)}},
	}, nil
}

// documentID returns the id in scheme-research://documents/{id}, or "".
func documentID(uri string) string {
	id, ok := strings.CutPrefix(uri, documentsURI+"/")
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
