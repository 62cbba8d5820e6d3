package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed pages"`
}

// TurnOutput is one answered question.
type TurnOutput struct {
	Seq      int    `json:"seq"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Source   string `json:"source,omitempty"`
	Summary  string `json:"summary,omitempty"`
	Answered bool   `json:"answered"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	URLs    []string `json:"urls" jsonschema:"web page URLs to load and index"`
	Replace bool     `json:"replace,omitempty" jsonschema:"discard the existing index instead of adding to it"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	Requested int      `json:"requested"`
	Loaded    int      `json:"loaded"`
	Skipped   []string `json:"skipped,omitempty"`
	IndexSize int      `json:"index_size"`
}

// HistoryInput is the input schema for the history tool.
type HistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"return only the most recent turns (default all)"`
}

// HistoryOutput is the output schema for the history tool.
type HistoryOutput struct {
	Turns []TurnOutput `json:"turns"`
	Count int          `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the most relevant indexed page",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest",
		Description: "Fetch web pages and add them to the index",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "history",
		Description: "List the questions answered in this session",
	}, s.handleHistory)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, TurnOutput, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, TurnOutput{}, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	turn, err := s.ports.Retrieval.Answer(ctx, question)
	if err != nil {
		return nil, TurnOutput{}, err
	}
	return nil, toTurnOutput(turn), nil
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	mode := domain.IngestMerge
	if input.Replace {
		mode = domain.IngestReplace
	}

	report, err := s.ports.Retrieval.Ingest(ctx, input.URLs, mode)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		Requested: report.Requested,
		Loaded:    report.Loaded,
		Skipped:   report.Skipped,
		IndexSize: report.IndexSize,
	}, nil
}

// handleHistory handles the history tool invocation.
func (s *Server) handleHistory(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input HistoryInput,
) (*mcp.CallToolResult, HistoryOutput, error) {
	turns := s.ports.Retrieval.History()
	if input.Limit > 0 && input.Limit < len(turns) {
		turns = turns[len(turns)-input.Limit:]
	}

	output := HistoryOutput{
		Turns: make([]TurnOutput, len(turns)),
		Count: len(turns),
	}
	for i := range turns {
		output.Turns[i] = toTurnOutput(turns[i])
	}
	return nil, output, nil
}

func toTurnOutput(turn domain.ChatTurn) TurnOutput {
	return TurnOutput{
		Seq:      turn.Seq,
		Question: turn.Query,
		Answer:   turn.Answer,
		Source:   turn.Source,
		Summary:  turn.Summary,
		Answered: turn.Answered(),
	}
}
