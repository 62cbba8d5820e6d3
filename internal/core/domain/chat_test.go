package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatHistory_AppendAssignsSequence(t *testing.T) {
	h := NewChatHistory()

	first := h.Append(ChatTurn{Query: "one"})
	second := h.Append(ChatTurn{Query: "two", Seq: 99})

	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, 2, second.Seq, "caller-provided sequence is overwritten")
	assert.Equal(t, 2, h.Len())
}

func TestChatHistory_PreservesInsertionOrderAndDuplicates(t *testing.T) {
	h := NewChatHistory()
	for _, q := range []string{"b", "a", "b"} {
		h.Append(ChatTurn{Query: q})
	}

	turns := h.Turns()

	require.Len(t, turns, 3)
	assert.Equal(t, "b", turns[0].Query)
	assert.Equal(t, "a", turns[1].Query)
	assert.Equal(t, "b", turns[2].Query)
}

func TestChatHistory_TurnsIsACopy(t *testing.T) {
	h := NewChatHistory()
	h.Append(ChatTurn{Query: "original"})

	turns := h.Turns()
	turns[0].Query = "changed"

	assert.Equal(t, "original", h.Turns()[0].Query)
}

func TestChatHistory_Last(t *testing.T) {
	var h ChatHistory
	_, ok := h.Last()
	assert.False(t, ok, "zero value is an empty history")

	h.Append(ChatTurn{Query: "q1"})
	h.Append(ChatTurn{Query: "q2"})

	last, ok := h.Last()
	assert.True(t, ok)
	assert.Equal(t, "q2", last.Query)
}

func TestChatTurn_Answered(t *testing.T) {
	miss := ChatTurn{Query: "q", Answer: NoRelevantInformation, AskedAt: time.Now()}
	hit := ChatTurn{Query: "q", Answer: "a", Source: "https://example.com"}

	assert.False(t, miss.Answered())
	assert.True(t, hit.Answered())
}
