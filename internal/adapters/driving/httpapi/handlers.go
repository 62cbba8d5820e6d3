package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
)

// IngestRequest is the body of POST /ingest.
type IngestRequest struct {
	URLs    []string `json:"urls" validate:"required,min=1,dive,required,url"`
	Replace bool     `json:"replace"`
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question" validate:"required"`
}

// TurnResponse is one answered question.
type TurnResponse struct {
	Seq      int       `json:"seq"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Source   string    `json:"source,omitempty"`
	Summary  string    `json:"summary,omitempty"`
	Answered bool      `json:"answered"`
	AskedAt  time.Time `json:"asked_at"`
}

// DocumentResponse describes an indexed document. Content is only set by
// GET /documents/{id}.
type DocumentResponse struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"`
	Title         string    `json:"title,omitempty"`
	ContentLength int       `json:"content_length"`
	Content       string    `json:"content,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	IndexSize int    `json:"index_size"`
	StorePath string `json:"store_path"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		IndexSize: s.retrieval.IndexSize(),
		StorePath: s.retrieval.StorePath(),
	})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	mode := domain.IngestMerge
	if req.Replace {
		mode = domain.IngestReplace
	}

	report, err := s.retrieval.Ingest(r.Context(), req.URLs, mode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, fmt.Errorf("%w: question is blank", domain.ErrInvalidInput))
		return
	}

	turn, err := s.retrieval.Answer(r.Context(), question)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTurnResponse(turn))
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := s.retrieval.Save(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, fmt.Errorf("%w: limit must be a non-negative integer", domain.ErrInvalidInput))
			return
		}
		limit = n
	}

	turns := s.retrieval.History()
	if limit > 0 && limit < len(turns) {
		turns = turns[len(turns)-limit:]
	}

	out := make([]TurnResponse, len(turns))
	for i := range turns {
		out[i] = toTurnResponse(turns[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, _ *http.Request) {
	docs := s.retrieval.Documents()
	out := make([]DocumentResponse, len(docs))
	for i := range docs {
		out[i] = toDocumentResponse(&docs[i], false)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	docs := s.retrieval.Documents()
	for i := range docs {
		if docs[i].ID == id {
			writeJSON(w, http.StatusOK, toDocumentResponse(&docs[i], true))
			return
		}
	}
	writeError(w, fmt.Errorf("%w: document %s", domain.ErrNotFound, id))
}

func toTurnResponse(turn domain.ChatTurn) TurnResponse {
	return TurnResponse{
		Seq:      turn.Seq,
		Question: turn.Query,
		Answer:   turn.Answer,
		Source:   turn.Source,
		Summary:  turn.Summary,
		Answered: turn.Answered(),
		AskedAt:  turn.AskedAt,
	}
}

func toDocumentResponse(doc *domain.Document, withContent bool) DocumentResponse {
	resp := DocumentResponse{
		ID:            doc.ID,
		Source:        doc.Source,
		Title:         doc.Title,
		ContentLength: len(doc.Content),
		CreatedAt:     doc.CreatedAt,
	}
	if withContent {
		resp.Content = doc.Content
	}
	return resp
}
