// Package docx extracts text from Word guidelines that scheme portals
// publish as downloads.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
	"github.com/custodia-labs/scheme-research/internal/normalisers"
)

var _ driven.Normaliser = (*Normaliser)(nil)

const (
	documentPart = "word/document.xml"
	corePart     = "docProps/core.xml"
	cellSep      = " | "
)

// Normaliser handles Office Open XML word documents.
type Normaliser struct{}

// New creates a DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise reads the document body one paragraph per line. Table rows
// become a single line with their cells separated by " | ".
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.LoadedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	archive, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a docx archive: %w", domain.ErrInvalidInput, err)
	}

	body, err := fs.ReadFile(archive, documentPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, documentPart, err)
	}

	text, err := readBody(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, documentPart, err)
	}

	title := coreTitle(archive)
	if title == "" {
		title = text.title
	}
	if title == "" {
		title = normalisers.TitleFromURI(raw.URI)
	}

	return &domain.LoadedDocument{
		Source:   raw.URI,
		Title:    title,
		Content:  strings.Join(text.lines, "\n"),
		MIMEType: raw.MIMEType,
	}, nil
}

type bodyText struct {
	lines []string
	title string // first paragraph styled "Title"
}

// readBody walks the WordprocessingML token stream. Only w:t runs carry
// text; w:tab and w:br become whitespace.
func readBody(r io.Reader) (bodyText, error) {
	var (
		out    bodyText
		para   strings.Builder
		style  string
		inText bool
		cells  []string
		depth  int // table nesting
	)

	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				para.Reset()
				style = ""
			case "pStyle":
				style = attr(t, "val")
			case "t":
				inText = true
			case "tab":
				para.WriteByte(' ')
			case "br", "cr":
				para.WriteByte('\n')
			case "tbl":
				depth++
			case "tr":
				cells = cells[:0]
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				line := strings.TrimSpace(para.String())
				if line == "" {
					continue
				}
				if depth > 0 {
					cells = append(cells, strings.Join(strings.Fields(line), " "))
					continue
				}
				if style == "Title" && out.title == "" {
					out.title = line
				}
				out.lines = append(out.lines, line)
			case "tr":
				if len(cells) > 0 {
					out.lines = append(out.lines, strings.Join(cells, cellSep))
				}
				cells = cells[:0]
			case "tbl":
				depth--
			}
		}
	}
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// coreTitle returns dc:title from the package properties, or "".
func coreTitle(archive *zip.Reader) string {
	data, err := fs.ReadFile(archive, corePart)
	if err != nil {
		return ""
	}
	var props struct {
		Title string `xml:"title"`
	}
	if err := xml.Unmarshal(data, &props); err != nil {
		return ""
	}
	return strings.TrimSpace(props.Title)
}
