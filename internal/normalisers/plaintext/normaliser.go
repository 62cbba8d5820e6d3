// Package plaintext is the fallback normaliser for bodies that need no
// markup removal: text notices, CSV, JSON and XML feeds.
package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
	"github.com/custodia-labs/scheme-research/internal/normalisers"
)

var _ driven.Normaliser = (*Normaliser)(nil)

// maxHeadingRunes bounds a first line that is taken as the title.
const maxHeadingRunes = 100

type Normaliser struct{}

func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes includes text/html so pages still load, markup and
// all, when no HTML normaliser is registered.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/plain", "text/csv", "text/xml", "text/html", "application/json", "application/xml"}
}

func (n *Normaliser) Priority() int {
	return 5
}

// Normalise cleans the body and, for multi-line text/plain notices, uses a
// short first line as the title.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.LoadedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text := clean(raw.Content)

	title := normalisers.TitleFromURI(raw.URI)
	if heading, rest, ok := strings.Cut(text, "\n"); ok && strings.TrimSpace(rest) != "" &&
		strings.HasPrefix(raw.MIMEType, "text/plain") &&
		utf8.RuneCountInString(heading) <= maxHeadingRunes {
		title = strings.TrimSpace(heading)
	}

	return &domain.LoadedDocument{
		Source:   raw.URI,
		Title:    title,
		Content:  text,
		MIMEType: raw.MIMEType,
	}, nil
}

// clean drops a byte order mark and invalid UTF-8, normalises line endings,
// trims trailing spaces and keeps at most one blank line in a row.
func clean(body []byte) string {
	s := strings.TrimPrefix(string(body), "\ufeff")
	s = strings.ToValidUTF8(s, "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var b strings.Builder
	blank := 0
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blank++
			continue
		}
		if b.Len() > 0 {
			b.WriteString(strings.Repeat("\n", min(blank, 1)+1))
		}
		blank = 0
		b.WriteString(line)
	}
	return strings.TrimSpace(b.String())
}
