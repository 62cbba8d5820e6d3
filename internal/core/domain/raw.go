package domain

// RawDocument is the body of a fetched URL before text extraction.
type RawDocument struct {
	// URI is the location the bytes were fetched from.
	URI string

	// MIMEType is the media type without parameters (e.g. "application/pdf").
	MIMEType string

	// Content is the raw response body.
	Content []byte
}
