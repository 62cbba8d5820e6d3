package domain

// IngestMode decides what happens to an existing index when new URLs are
// ingested.
type IngestMode string

const (
	// IngestMerge appends the new batch to the existing index. Only the new
	// documents are embedded.
	IngestMerge IngestMode = "merge"

	// IngestReplace discards the existing index and builds a fresh one from
	// the new batch.
	IngestReplace IngestMode = "replace"
)

// IsValid returns true if the mode is recognised.
func (m IngestMode) IsValid() bool {
	return m == IngestMerge || m == IngestReplace
}

// String returns the string representation.
func (m IngestMode) String() string {
	return string(m)
}

// IngestReport describes the outcome of a successful ingestion.
type IngestReport struct {
	// Requested is the number of URLs passed in.
	Requested int `json:"requested" yaml:"requested"`

	// Loaded is the number of documents the loader returned.
	Loaded int `json:"loaded" yaml:"loaded"`

	// Skipped lists the URLs that produced no document.
	Skipped []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`

	// IndexSize is the number of documents in the index after the swap.
	IndexSize int `json:"index_size" yaml:"index_size"`

	// Mode is how the batch was combined with the existing index.
	Mode IngestMode `json:"mode" yaml:"mode"`
}
