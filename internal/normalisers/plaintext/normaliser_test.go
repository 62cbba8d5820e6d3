package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
)

func normalise(t *testing.T, uri, mime, body string) *domain.LoadedDocument {
	t.Helper()
	doc, err := New().Normalise(context.Background(), &domain.RawDocument{URI: uri, MIMEType: mime, Content: []byte(body)})
	require.NoError(t, err)
	return doc
}

func TestNormaliser_Registration(t *testing.T) {
	n := New()

	assert.Contains(t, n.SupportedMIMETypes(), "text/plain")
	assert.Contains(t, n.SupportedMIMETypes(), "application/json")
	assert.Equal(t, 5, n.Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_SingleLine(t *testing.T) {
	doc := normalise(t, "https://example.gov/notices/deadline-2024.txt", "text/plain", "  Applications close on 31 March.\n")

	assert.Equal(t, "deadline 2024", doc.Title)
	assert.Equal(t, "Applications close on 31 March.", doc.Content)
	assert.Equal(t, "https://example.gov/notices/deadline-2024.txt", doc.Source)
	assert.Equal(t, "text/plain", doc.MIMEType)
}

func TestNormalise_HeadingTitle(t *testing.T) {
	doc := normalise(t, "https://example.gov/n.txt", "text/plain; charset=utf-8",
		"Seed Subsidy Notice\r\n\r\n\r\n\r\nSubsidy is 50 percent.   \r\nApply at the block office.\r\n")

	assert.Equal(t, "Seed Subsidy Notice", doc.Title)
	assert.Equal(t, "Seed Subsidy Notice\n\nSubsidy is 50 percent.\nApply at the block office.", doc.Content)
}

func TestNormalise_HeadingOnlyForPlainText(t *testing.T) {
	doc := normalise(t, "https://example.gov/data/schemes.csv", "text/csv", "name,amount\nPM-KISAN,6000\n")

	assert.Equal(t, "schemes", doc.Title)
	assert.Equal(t, "name,amount\nPM-KISAN,6000", doc.Content)
}

func TestNormalise_LongFirstLineIsNotTitle(t *testing.T) {
	long := "This notice explains in considerable detail who may apply for the scheme and which documents they need to bring along"

	doc := normalise(t, "https://example.gov/notice.txt", "text/plain", long+"\nSecond line.")

	assert.Equal(t, "notice", doc.Title)
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"devanagari", "प्रधानमंत्री किसान सम्मान निधि", "प्रधानमंत्री किसान सम्मान निधि"},
		{"invalid utf-8 dropped", "ok\xff\xfe text", "ok text"},
		{"byte order mark", "\ufeffhello", "hello"},
		{"old mac line endings", "a\rb", "a\nb"},
		{"blank runs collapsed", "a\n\n\n\nb", "a\n\nb"},
		{"whitespace only", " \n\t\n", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, clean([]byte(tc.in)))
		})
	}
}
