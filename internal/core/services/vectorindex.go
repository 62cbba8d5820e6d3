package services

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
)

// VectorIndex is an exact nearest-neighbour index over document embeddings.
//
// Search compares the query against every stored vector, so results are
// exact for the configured metric. Entries keep their insertion order, which
// also breaks distance ties. A VectorIndex is not safe for concurrent
// mutation; RetrievalSession guards it and swaps whole indexes on ingest.
type VectorIndex struct {
	metric domain.DistanceMetric
	dims   int
	docs   []domain.Document
}

// NewVectorIndex creates an empty index.
// A dims of zero adopts the dimensionality of the first added batch.
func NewVectorIndex(metric domain.DistanceMetric, dims int) (*VectorIndex, error) {
	if !metric.IsValid() {
		return nil, fmt.Errorf("%w: unknown metric %q", domain.ErrInvalidInput, metric)
	}
	if dims < 0 {
		return nil, fmt.Errorf("%w: negative dimensions %d", domain.ErrInvalidInput, dims)
	}
	return &VectorIndex{metric: metric, dims: dims}, nil
}

// RestoreVectorIndex rebuilds an index from a persisted snapshot.
// Any inconsistency in the snapshot is reported as domain.ErrStoreCorrupt.
func RestoreVectorIndex(snapshot *domain.IndexSnapshot) (*VectorIndex, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("%w: nil snapshot", domain.ErrStoreCorrupt)
	}
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}
	docs := make([]domain.Document, len(snapshot.Documents))
	copy(docs, snapshot.Documents)
	return &VectorIndex{
		metric: snapshot.Metric,
		dims:   snapshot.Dimensions,
		docs:   docs,
	}, nil
}

// Add appends documents in order. Either every document is added or, on
// error, none is: embeddings and IDs are validated before anything changes.
func (v *VectorIndex) Add(docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	dims := v.dims
	if dims == 0 {
		dims = len(docs[0].Embedding)
	}
	if dims == 0 {
		return fmt.Errorf("%w: document %q has an empty embedding", domain.ErrInvalidInput, docs[0].ID)
	}

	seen := make(map[string]struct{}, len(v.docs)+len(docs))
	for i := range v.docs {
		seen[v.docs[i].ID] = struct{}{}
	}
	for i := range docs {
		doc := &docs[i]
		if doc.ID == "" {
			return fmt.Errorf("%w: document %d has no id", domain.ErrInvalidInput, i)
		}
		if _, dup := seen[doc.ID]; dup {
			return fmt.Errorf("%w: duplicate document id %q", domain.ErrInvalidInput, doc.ID)
		}
		seen[doc.ID] = struct{}{}
		if len(doc.Embedding) != dims {
			return fmt.Errorf("%w: document %q has %d dimensions, index has %d",
				domain.ErrDimensionMismatch, doc.ID, len(doc.Embedding), dims)
		}
	}

	v.dims = dims
	v.docs = append(v.docs, docs...)
	return nil
}

// Search returns up to k documents closest to query, nearest first.
// Equal distances keep insertion order. An empty index or a non-positive k
// yields an empty result and no error.
func (v *VectorIndex) Search(query []float32, k int) ([]domain.RetrievalResult, error) {
	if len(v.docs) == 0 || k <= 0 {
		return []domain.RetrievalResult{}, nil
	}
	if len(query) != v.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), v.dims)
	}

	results := make([]domain.RetrievalResult, len(v.docs))
	for i := range v.docs {
		results[i] = domain.RetrievalResult{
			Document: v.docs[i],
			Distance: v.metric.Distance(query, v.docs[i].Embedding),
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Len returns the number of indexed documents.
func (v *VectorIndex) Len() int {
	return len(v.docs)
}

// Metric returns the distance metric.
func (v *VectorIndex) Metric() domain.DistanceMetric {
	return v.metric
}

// Dimensions returns the embedding size, or zero if nothing was added yet.
func (v *VectorIndex) Dimensions() int {
	return v.dims
}

// Documents returns a copy of the indexed documents in insertion order.
func (v *VectorIndex) Documents() []domain.Document {
	out := make([]domain.Document, len(v.docs))
	copy(out, v.docs)
	return out
}

// Clone returns an independent index with the same contents.
// Embedding slices are shared because documents are never mutated.
func (v *VectorIndex) Clone() *VectorIndex {
	return &VectorIndex{
		metric: v.metric,
		dims:   v.dims,
		docs:   v.Documents(),
	}
}

// Snapshot returns the persistable image of the index.
func (v *VectorIndex) Snapshot() *domain.IndexSnapshot {
	return &domain.IndexSnapshot{
		Version:    domain.SnapshotVersion,
		Metric:     v.metric,
		Dimensions: v.dims,
		Documents:  v.Documents(),
	}
}
