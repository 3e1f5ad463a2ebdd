// Package models defines the value types exchanged between the store,
// aggregation, and analytics layers. All types are produced fresh per
// query and never mutated after return.
package models

import (
	"fmt"
	"math"
)

// Sample is a single timestamped scalar observation of a named metric type.
// Timestamps are epoch milliseconds. Metadata keys are optional dimensions
// used for grouping.
type Sample struct {
	Type      string            `json:"type"`
	Value     float64           `json:"value"`
	Timestamp int64             `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// MaxEpochMillis bounds valid sample timestamps. Anything above this is
// treated as a malformed epoch value (roughly year 9999 in milliseconds).
const MaxEpochMillis = int64(253402300799999)

// Validate checks the sample invariants: non-empty type, finite value,
// and a plausible epoch-millisecond timestamp.
func (s *Sample) Validate() error {
	if s.Type == "" {
		return fmt.Errorf("sample type must not be empty")
	}
	if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
		return fmt.Errorf("sample value must be finite, got %v", s.Value)
	}
	if s.Timestamp < 0 || s.Timestamp > MaxEpochMillis {
		return fmt.Errorf("sample timestamp %d is not a valid epoch value", s.Timestamp)
	}
	return nil
}

// Dimension returns the metadata value for key, or "unknown" when the
// sample does not carry that dimension.
func (s *Sample) Dimension(key string) string {
	if v, ok := s.Metadata[key]; ok {
		return v
	}
	return "unknown"
}

// Series is a timestamp-ascending sequence of samples. A series is
// derived on read and is not guaranteed contiguous. Single-type entry
// points expect a type-homogeneous series; multi-type consumers group
// with GroupByType first.
type Series []Sample

// Values extracts just the values from the series.
func (s Series) Values() []float64 {
	values := make([]float64, len(s))
	for i, p := range s {
		values[i] = p.Value
	}
	return values
}

// Timestamps extracts just the timestamps from the series.
func (s Series) Timestamps() []int64 {
	ts := make([]int64, len(s))
	for i, p := range s {
		ts[i] = p.Timestamp
	}
	return ts
}

// Mean calculates the mean of all values.
func (s Series) Mean() float64 {
	if len(s) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range s {
		sum += p.Value
	}
	return sum / float64(len(s))
}

// StdDev calculates the population standard deviation of all values
// (divisor = n, matching the aggregation engine's variance definition).
func (s Series) StdDev() float64 {
	if len(s) == 0 {
		return 0
	}
	mean := s.Mean()
	sumSq := 0.0
	for _, p := range s {
		diff := p.Value - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(s)))
}

// GroupByType splits a mixed series into per-type series. Sample order
// within each group follows the input order.
func (s Series) GroupByType() map[string]Series {
	groups := make(map[string]Series)
	for _, p := range s {
		groups[p.Type] = append(groups[p.Type], p)
	}
	return groups
}
