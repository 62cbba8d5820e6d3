// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/scheme-research/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the question and answer view.
	ViewChat ViewType = iota
	// ViewDocuments lists the indexed documents.
	ViewDocuments
	// ViewHelp is the keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewDocuments:
		return "documents"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// AnswerCompleted carries the turn produced for a question.
type AnswerCompleted struct {
	Query string
	Turn  domain.ChatTurn
	Err   error
}

// IngestCompleted carries the outcome of loading URLs.
type IngestCompleted struct {
	URLs   []string
	Report *domain.IngestReport
	Err    error
}

// IndexSaved signals the index was written to its store.
type IndexSaved struct {
	Path string
	Err  error
}

// DocumentsLoaded carries the indexed documents.
type DocumentsLoaded struct {
	Documents []domain.Document
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
