package domain

import "time"

// NoRelevantInformation is the answer recorded when retrieval finds nothing.
const NoRelevantInformation = "I'm sorry, I couldn't find any relevant information."

// ChatTurn is one query/answer exchange.
type ChatTurn struct {
	// Seq is the 1-based position of the turn within its history.
	// It is assigned by ChatHistory.Append.
	Seq int `json:"seq" yaml:"seq"`

	// Query is the user's question.
	Query string `json:"query" yaml:"query"`

	// Answer is the synthesised answer, or NoRelevantInformation.
	Answer string `json:"answer" yaml:"answer"`

	// Source is the URL of the document the answer was drawn from.
	// Empty when nothing relevant was found.
	Source string `json:"source" yaml:"source"`

	// Summary is a short summary of the source document.
	Summary string `json:"summary" yaml:"summary"`

	// AskedAt is when the turn was answered.
	AskedAt time.Time `json:"asked_at" yaml:"asked_at"`
}

// Answered reports whether the turn carries a real answer rather than the
// no-match sentinel.
func (t ChatTurn) Answered() bool {
	return t.Source != ""
}

// ChatHistory is the ordered, append-only record of one session's turns.
// Turns are never reordered, deduplicated or removed.
// The zero value is an empty history ready to use.
type ChatHistory struct {
	turns []ChatTurn
}

// NewChatHistory creates an empty history.
func NewChatHistory() *ChatHistory {
	return &ChatHistory{}
}

// Append records a turn at the end of the history and returns it with its
// sequence number assigned.
func (h *ChatHistory) Append(turn ChatTurn) ChatTurn {
	turn.Seq = len(h.turns) + 1
	h.turns = append(h.turns, turn)
	return turn
}

// Turns returns a copy of the turns in insertion order.
func (h *ChatHistory) Turns() []ChatTurn {
	out := make([]ChatTurn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of recorded turns.
func (h *ChatHistory) Len() int {
	return len(h.turns)
}

// Last returns the most recent turn, if any.
func (h *ChatHistory) Last() (ChatTurn, bool) {
	if len(h.turns) == 0 {
		return ChatTurn{}, false
	}
	return h.turns[len(h.turns)-1], true
}
