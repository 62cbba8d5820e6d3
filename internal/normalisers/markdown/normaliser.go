// Package markdown turns Markdown pages, including static-site sources with
// YAML front matter, into plain text.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
	"github.com/custodia-labs/scheme-research/internal/normalisers"
)

var _ driven.Normaliser = (*Normaliser)(nil)

type Normaliser struct{}

func New() *Normaliser {
	return &Normaliser{}
}

func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

func (n *Normaliser) Priority() int {
	return 50
}

// Normalise picks the title from front matter, then the first level one
// heading, then the URI.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.LoadedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	meta, body := splitFrontMatter(strings.ReplaceAll(string(raw.Content), "\r\n", "\n"))

	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = firstHeading(body)
	}
	if title == "" {
		title = normalisers.TitleFromURI(raw.URI)
	}

	return &domain.LoadedDocument{
		Source:   raw.URI,
		Title:    title,
		Content:  stripMarkdown(body),
		MIMEType: raw.MIMEType,
	}, nil
}

type frontMatter struct {
	Title string `yaml:"title"`
}

// splitFrontMatter separates a leading "---" YAML block from the body. A
// block that does not parse is still removed.
func splitFrontMatter(s string) (frontMatter, string) {
	var meta frontMatter
	rest, ok := strings.CutPrefix(s, "---\n")
	if !ok {
		return meta, s
	}
	block, body, found := strings.Cut(rest, "\n---\n")
	if !found {
		if b, isEnd := strings.CutSuffix(rest, "\n---"); isEnd {
			block, body = b, ""
		} else {
			return meta, s
		}
	}
	_ = yaml.Unmarshal([]byte(block), &meta) //nolint:errcheck // title stays empty
	return meta, body
}

var (
	atxH1    = regexp.MustCompile(`(?m)^#[ \t]+(.+?)[ \t]*#*[ \t]*$`)
	setextH1 = regexp.MustCompile(`(?m)^([^\s#>*-].*?)[ \t]*\n=+[ \t]*$`)

	codeFence  = regexp.MustCompile("(?s)```[^\n]*\n(.*?)```")
	inlineCode = regexp.MustCompile("`([^`]+)`")
	images     = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links      = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	tableRule  = regexp.MustCompile(`(?m)^[ \t]*\|?([ \t]*:?-+:?[ \t]*\|)+[ \t]*(:?-+:?)?[ \t]*\|?[ \t]*$\n?`)
	atxMarks   = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	underlines = regexp.MustCompile(`(?m)^(=+|-{3,}|\*{3,}|_{3,})[ \t]*$`)
	bullets    = regexp.MustCompile(`(?m)^[ \t]*([-*+]|\d+\.)[ \t]+`)
	emphasis   = regexp.MustCompile(`(\*\*|__|\*|\b_|_\b)`)
	quoteMarks = regexp.MustCompile(`(?m)^>[ \t]?`)
	blankRuns  = regexp.MustCompile(`\n{3,}`)
)

func firstHeading(body string) string {
	atx := atxH1.FindStringSubmatchIndex(body)
	setext := setextH1.FindStringSubmatchIndex(body)
	switch {
	case atx != nil && (setext == nil || atx[0] < setext[0]):
		return body[atx[2]:atx[3]]
	case setext != nil:
		return body[setext[2]:setext[3]]
	}
	return ""
}

// stripMarkdown removes the syntax and keeps the text it decorates, code
// included. Table rows become "cell | cell".
func stripMarkdown(s string) string {
	s = codeFence.ReplaceAllString(s, "$1")
	s = inlineCode.ReplaceAllString(s, "$1")
	s = images.ReplaceAllString(s, "")
	s = links.ReplaceAllString(s, "$1")
	s = tableRule.ReplaceAllString(s, "")
	s = atxMarks.ReplaceAllString(s, "")
	s = underlines.ReplaceAllString(s, "")
	s = bullets.ReplaceAllString(s, "")
	s = emphasis.ReplaceAllString(s, "")
	s = quoteMarks.ReplaceAllString(s, "")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = tableRow(line)
	}
	s = blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(s)
}

func tableRow(line string) string {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "|") || !strings.HasSuffix(trimmed, "|") || len(trimmed) < 2 {
		return line
	}
	cells := strings.Split(trimmed[1:len(trimmed)-1], "|")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return strings.Join(cells, " | ")
}
