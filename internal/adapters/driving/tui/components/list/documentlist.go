// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/scheme-research/internal/core/domain"
)

// DocumentList displays indexed documents in a navigable list.
type DocumentList struct {
	documents []domain.Document
	selected  int
	styles    *styles.Styles
	width     int
	height    int
}

// NewDocumentList creates a new document list component.
func NewDocumentList(s *styles.Styles) *DocumentList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &DocumentList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the document list.
func (d *DocumentList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (d *DocumentList) Update(msg tea.Msg) (*DocumentList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			d.MoveUp()
		case "down", "j":
			d.MoveDown()
		}
	}
	return d, nil
}

// View renders the document list.
func (d *DocumentList) View() string {
	if len(d.documents) == 0 {
		return d.styles.Muted.Render("No documents indexed. Press esc and ctrl+u to add URLs.")
	}

	lines := make([]string, 0, len(d.documents)+2)
	lines = append(lines, d.styles.Title.Render(fmt.Sprintf("Documents (%d)", len(d.documents))), "")

	// Two lines per entry.
	visible := (d.height - 2) / 2
	if visible < 1 {
		visible = 1
	}

	start := 0
	if d.selected >= visible {
		start = d.selected - visible + 1
	}
	end := start + visible
	if end > len(d.documents) {
		end = len(d.documents)
	}

	for i := start; i < end; i++ {
		lines = append(lines, d.renderDocument(i, &d.documents[i]))
	}

	return strings.Join(lines, "\n")
}

func (d *DocumentList) renderDocument(index int, doc *domain.Document) string {
	indicator := "  "
	if index == d.selected {
		indicator = "> "
	}

	title := doc.Title
	if title == "" {
		title = "(untitled)"
	}
	title = truncate(title, d.width-20)

	length := fmt.Sprintf("%d chars", utf8.RuneCountInString(doc.Content))

	var titleLine string
	if index == d.selected {
		titleLine = d.styles.Selected.Render(indicator+title) + "  " + d.styles.Muted.Render(length)
	} else {
		titleLine = d.styles.Normal.Render(indicator+title) + "  " + d.styles.Muted.Render(length)
	}

	return titleLine + "\n" + d.styles.Source.Render("    "+truncate(doc.Source, d.width-6))
}

func truncate(s string, limit int) string {
	if limit < 10 {
		limit = 10
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-3]) + "..."
}

// SetDocuments replaces the listed documents and resets the selection.
func (d *DocumentList) SetDocuments(docs []domain.Document) {
	d.documents = docs
	d.selected = 0
}

// Documents returns the listed documents.
func (d *DocumentList) Documents() []domain.Document {
	return d.documents
}

// Selected returns the index of the selected document.
func (d *DocumentList) Selected() int {
	return d.selected
}

// SelectedDocument returns the selected document, or nil if the list is empty.
func (d *DocumentList) SelectedDocument() *domain.Document {
	if d.selected < 0 || d.selected >= len(d.documents) {
		return nil
	}
	return &d.documents[d.selected]
}

// MoveUp moves the selection up.
func (d *DocumentList) MoveUp() {
	if d.selected > 0 {
		d.selected--
	}
}

// MoveDown moves the selection down.
func (d *DocumentList) MoveDown() {
	if d.selected < len(d.documents)-1 {
		d.selected++
	}
}

// SetSize sets the list dimensions.
func (d *DocumentList) SetSize(width, height int) {
	d.width = width
	d.height = height
}
