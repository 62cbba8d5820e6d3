package domain

import "math"

// DistanceMetric selects how the vector index measures distance.
// The metric is fixed for the lifetime of an index and persisted with it.
type DistanceMetric string

// Available distance metrics.
const (
	// MetricEuclidean is the L2 distance between two vectors.
	MetricEuclidean DistanceMetric = "euclidean"

	// MetricCosine is 1 minus the cosine similarity of two vectors.
	// A zero vector is at distance 1 from everything.
	MetricCosine DistanceMetric = "cosine"
)

// IsValid returns true if the metric is recognised.
func (m DistanceMetric) IsValid() bool {
	switch m {
	case MetricEuclidean, MetricCosine:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m DistanceMetric) String() string {
	return string(m)
}

// Description returns a human-readable description of the metric.
func (m DistanceMetric) Description() string {
	switch m {
	case MetricEuclidean:
		return "Euclidean (L2 distance)"
	case MetricCosine:
		return "Cosine (1 - cosine similarity)"
	default:
		return unknownDescription
	}
}

// Distance computes the distance between a and b.
// Both vectors must have the same length; callers validate dimensionality.
func (m DistanceMetric) Distance(a, b []float32) float64 {
	switch m {
	case MetricCosine:
		var dot, na, nb float64
		for i := range a {
			x, y := float64(a[i]), float64(b[i])
			dot += x * y
			na += x * x
			nb += y * y
		}
		if na == 0 || nb == 0 {
			return 1
		}
		return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
	default:
		var sum float64
		for i := range a {
			d := float64(a[i]) - float64(b[i])
			sum += d * d
		}
		return math.Sqrt(sum)
	}
}

// AllDistanceMetrics returns all available metrics.
func AllDistanceMetrics() []DistanceMetric {
	return []DistanceMetric{MetricEuclidean, MetricCosine}
}
