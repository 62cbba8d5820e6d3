// Package pdf provides a Normaliser for PDF documents using a pure-Go PDF
// reader, so no external tools are required.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
	"github.com/custodia-labs/scheme-research/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the plain text of every page. The title comes from the
// document info dictionary when present.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (doc *domain.LoadedDocument, err error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	// The reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("%w: malformed pdf: %v", domain.ErrInvalidInput, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %w", domain.ErrInvalidInput, err)
	}

	text, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("%w: extract pdf text: %w", domain.ErrInvalidInput, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, text); err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}

	title := strings.TrimSpace(reader.Trailer().Key("Info").Key("Title").Text())
	if title == "" {
		title = normalisers.TitleFromURI(raw.URI)
	}

	return &domain.LoadedDocument{
		Source:   raw.URI,
		Title:    title,
		Content:  strings.TrimSpace(buf.String()),
		MIMEType: raw.MIMEType,
	}, nil
}
