package domain

// SnapshotVersion is the current persisted index format version.
// Stores written with any other version are rejected as corrupt.
const SnapshotVersion = 1

// IndexSnapshot is the durable image of a vector index.
// Each document carries its own embedding, so the pair
// (documents, vectors) cannot drift apart on disk.
type IndexSnapshot struct {
	// Version is the format version, always SnapshotVersion when written.
	Version int `json:"version"`

	// Metric is the distance metric of the index.
	Metric DistanceMetric `json:"metric"`

	// Dimensions is the embedding size shared by every document.
	// Zero for an index that has never held a document.
	Dimensions int `json:"dimensions"`

	// Documents holds the indexed documents in insertion order.
	Documents []Document `json:"documents"`
}

// Validate checks the snapshot for internal consistency.
// It returns ErrStoreCorrupt wrapped with the reason on failure.
func (s *IndexSnapshot) Validate() error {
	if s.Version != SnapshotVersion {
		return corruptf("unsupported version %d (want %d)", s.Version, SnapshotVersion)
	}
	if !s.Metric.IsValid() {
		return corruptf("unknown metric %q", s.Metric)
	}
	if s.Dimensions < 0 {
		return corruptf("negative dimensions %d", s.Dimensions)
	}
	if len(s.Documents) > 0 && s.Dimensions == 0 {
		return corruptf("documents present but dimensions unset")
	}
	seen := make(map[string]struct{}, len(s.Documents))
	for i := range s.Documents {
		doc := &s.Documents[i]
		if doc.ID == "" {
			return corruptf("document %d has no id", i)
		}
		if _, dup := seen[doc.ID]; dup {
			return corruptf("duplicate document id %q", doc.ID)
		}
		seen[doc.ID] = struct{}{}
		if len(doc.Embedding) != s.Dimensions {
			return corruptf("document %q has %d dimensions, want %d", doc.ID, len(doc.Embedding), s.Dimensions)
		}
	}
	return nil
}
