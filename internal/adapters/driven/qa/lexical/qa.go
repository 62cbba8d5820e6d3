// Package lexical provides an offline extractive QuestionAnswerer that picks
// the context sentence sharing the most terms with the question.
//
// It is a deterministic stand-in for a neural span-selection model: it needs
// no network access and always returns a span taken verbatim from the
// context.
package lexical

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
)

// Ensure QA implements the interface.
var _ driven.QuestionAnswerer = (*QA)(nil)

// ModelName identifies this answerer in settings and logs.
const ModelName = "lexical-overlap"

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"can": {}, "do": {}, "does": {}, "for": {}, "from": {}, "how": {}, "i": {},
	"in": {}, "is": {}, "it": {}, "me": {}, "my": {}, "of": {}, "on": {}, "or": {},
	"tell": {}, "that": {}, "the": {}, "this": {}, "to": {}, "was": {}, "what": {},
	"when": {}, "where": {}, "which": {}, "who": {}, "why": {}, "will": {}, "with": {},
	"you": {}, "your": {},
}

// QA answers questions by sentence overlap.
type QA struct{}

// New creates a lexical answerer.
func New() *QA {
	return &QA{}
}

// ModelName returns the answerer's name.
func (q *QA) ModelName() string {
	return ModelName
}

// Answer returns the sentence of contextText with the highest share of the
// question's content words. Ties go to the earlier sentence. When nothing
// overlaps the first sentence is returned with a zero score.
func (q *QA) Answer(ctx context.Context, question, contextText string) (domain.ExtractedAnswer, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExtractedAnswer{}, err
	}

	spans := sentences(contextText)
	if len(spans) == 0 {
		return domain.ExtractedAnswer{}, fmt.Errorf("%w: empty context", domain.ErrInvalidInput)
	}

	terms := contentTerms(question)

	best, bestScore := 0, 0.0
	if len(terms) > 0 {
		for i, sp := range spans {
			score := overlap(terms, contextText[sp.start:sp.end])
			if score > bestScore {
				best, bestScore = i, score
			}
		}
	}

	sp := spans[best]
	return domain.ExtractedAnswer{
		Text:  contextText[sp.start:sp.end],
		Score: bestScore,
		Start: sp.start,
		End:   sp.end,
	}, nil
}

type span struct {
	start, end int
}

// sentences splits text at sentence punctuation followed by whitespace and
// at line breaks. Offsets are byte positions of trimmed sentences.
func sentences(text string) []span {
	var out []span
	start := 0
	emit := func(end int) {
		s, e := start, end
		for s < e && isSpace(text[s]) {
			s++
		}
		for e > s && isSpace(text[e-1]) {
			e--
		}
		if s < e {
			out = append(out, span{s, e})
		}
	}

	for i, r := range text {
		switch {
		case r == '\n':
			emit(i)
			start = i + 1
		case r == '.' || r == '!' || r == '?':
			next := i + 1
			if next >= len(text) || isSpace(text[next]) {
				emit(next)
				start = next
			}
		}
	}
	emit(len(text))
	return out
}

// contentTerms returns the distinct non-stopword tokens of text.
func contentTerms(text string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, tok := range tokenize(text) {
		if _, stop := stopWords[tok]; !stop {
			terms[tok] = struct{}{}
		}
	}
	return terms
}

// overlap is the fraction of terms that occur in sentence. Words of four or
// more bytes also match on a shared four-byte prefix, so "apply" matches
// "application".
func overlap(terms map[string]struct{}, sentence string) float64 {
	tokens := tokenize(sentence)
	matched := 0
	for term := range terms {
		for _, tok := range tokens {
			if tok == term || (len(term) >= 4 && len(tok) >= 4 && term[:4] == tok[:4]) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(terms))
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
