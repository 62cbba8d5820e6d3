package domain

import "time"

// Document is a single ingested document.
// It is created at ingestion time and never modified afterwards; the
// vector index owns every Document it holds.
type Document struct {
	// ID is the unique identifier for the document.
	ID string `json:"id"`

	// Source is the URL the document was fetched from.
	Source string `json:"source"`

	// Title is the human-readable title, if the loader found one.
	Title string `json:"title,omitempty"`

	// Content is the full text content after normalisation.
	Content string `json:"content"`

	// Embedding is the vector representation of Content.
	Embedding []float32 `json:"embedding"`

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time `json:"created_at"`
}

// LoadedDocument is the output of a document loader, before embedding.
type LoadedDocument struct {
	// Source is the URL the content came from.
	Source string

	// Title is the page or file title, when available.
	Title string

	// Content is the extracted plain text.
	Content string

	// MIMEType is the media type reported by the server.
	MIMEType string
}

// RetrievalResult is a single nearest-neighbour hit. It is never persisted.
type RetrievalResult struct {
	// Document is the matched document.
	Document Document

	// Distance is the distance between the query vector and the document
	// embedding under the index metric. Lower is closer.
	Distance float64
}
