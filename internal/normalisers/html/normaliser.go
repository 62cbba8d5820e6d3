package html

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
	"github.com/custodia-labs/scheme-research/internal/normalisers"
)

var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser turns scheme web pages into plain text.
type Normaliser struct {
	keepChrome bool
}

// Option configures a Normaliser.
type Option func(*Normaliser)

// WithChrome keeps navigation, header, footer and form regions in the text.
func WithChrome() Option {
	return func(n *Normaliser) { n.keepChrome = true }
}

// New creates an HTML normaliser.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the page title and its readable text. When the page
// marks a <main> or <article> region only that region is kept.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.LoadedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	page := string(raw.Content)
	body := page
	if !n.keepChrome {
		body = dropAll(body, chromeTags)
		if region := contentRegion(body); region != "" {
			body = region
		}
	}

	return &domain.LoadedDocument{
		Source:   raw.URI,
		Title:    pageTitle(page, raw.URI),
		Content:  stripHTML(body),
		MIMEType: raw.MIMEType,
	}, nil
}

func element(tag string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)<` + tag + `\b[^>]*>.*?</` + tag + `\s*>`)
}

var (
	// Removed from every page.
	noiseTags = []*regexp.Regexp{
		element("script"), element("style"), element("noscript"),
		element("head"), element("svg"), element("template"),
		regexp.MustCompile(`(?s)<!--.*?-->`),
	}

	// Site furniture around the scheme content.
	chromeTags = []*regexp.Regexp{
		element("nav"), element("header"), element("footer"),
		element("aside"), element("form"),
	}

	regionTags = []*regexp.Regexp{element("main"), element("article")}

	titleTag   = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	ogTitle    = regexp.MustCompile(`(?is)<meta[^>]+property=["']og:title["'][^>]*content=["']([^"']*)["']`)
	headingTag = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)

	lineBreaks = regexp.MustCompile(`(?i)</?(p|div|h[1-6]|li|tr|dt|dd|blockquote|pre|table|section|article|main)\b[^>]*>|<(br|hr)\s*/?>`)
	cellBreaks = regexp.MustCompile(`(?i)</t[dh]\s*>`)
	anyTag     = regexp.MustCompile(`<[^>]+>`)
	spaceRuns  = regexp.MustCompile(`[ \t\x{00a0}]+`)
)

func dropAll(s string, res []*regexp.Regexp) string {
	for _, re := range res {
		s = re.ReplaceAllString(s, "")
	}
	return s
}

// contentRegion returns the concatenated <main>/<article> regions, or "".
func contentRegion(s string) string {
	for _, re := range regionTags {
		if found := re.FindAllString(s, -1); len(found) > 0 {
			return strings.Join(found, "\n")
		}
	}
	return ""
}

// pageTitle tries <title>, og:title and the first <h1> before falling back
// to a title derived from the URI.
func pageTitle(page, uri string) string {
	for _, re := range []*regexp.Regexp{titleTag, ogTitle, headingTag} {
		m := re.FindStringSubmatch(page)
		if len(m) < 2 {
			continue
		}
		text := anyTag.ReplaceAllString(m[1], "")
		if title := strings.Join(strings.Fields(html.UnescapeString(text)), " "); title != "" {
			return title
		}
	}
	return normalisers.TitleFromURI(uri)
}

// stripHTML reduces markup to text with one block per line.
func stripHTML(s string) string {
	s = dropAll(s, noiseTags)
	s = lineBreaks.ReplaceAllString(s, "\n")
	s = cellBreaks.ReplaceAllString(s, " ")
	s = anyTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(spaceRuns.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String()
}
