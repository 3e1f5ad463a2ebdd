package store

import (
	"sort"

	"github.com/metricadb/metrica/internal/models"
)

// orderedSeries maintains a slice of samples sorted by timestamp,
// optimized for the append-heavy time-series write pattern and for
// binary-searched range queries.
//
// NOT THREAD-SAFE: synchronization is handled by MemoryStore's shard
// locks at a higher level.
type orderedSeries struct {
	samples []models.Sample
}

func newOrderedSeries(capacity int) *orderedSeries {
	return &orderedSeries{
		samples: make([]models.Sample, 0, capacity),
	}
}

// add inserts a sample in timestamp order. Equal timestamps are allowed;
// the new sample lands after existing ones at the same timestamp so
// insertion order is preserved within a timestamp.
func (os *orderedSeries) add(s models.Sample) {
	// Fast path: append when the sample is not older than the last one
	if n := len(os.samples); n == 0 || s.Timestamp >= os.samples[n-1].Timestamp {
		os.samples = append(os.samples, s)
		return
	}

	idx := sort.Search(len(os.samples), func(i int) bool {
		return os.samples[i].Timestamp > s.Timestamp
	})

	os.samples = append(os.samples, models.Sample{})
	copy(os.samples[idx+1:], os.samples[idx:])
	os.samples[idx] = s
}

// queryRange appends all samples with timestamp in [start, end] to dst
// and returns the extended slice. Copies out so callers hold an
// immutable snapshot independent of later writes.
func (os *orderedSeries) queryRange(dst models.Series, start, end int64) models.Series {
	lo, hi := os.rangeBounds(start, end)
	if lo >= hi {
		return dst
	}
	return append(dst, os.samples[lo:hi]...)
}

// deleteRange removes samples with timestamp in [start, end] and
// reports how many were removed.
func (os *orderedSeries) deleteRange(start, end int64) int {
	lo, hi := os.rangeBounds(start, end)
	if lo >= hi {
		return 0
	}
	removed := hi - lo
	os.samples = append(os.samples[:lo], os.samples[hi:]...)
	return removed
}

// deleteBefore removes samples with timestamp < cutoff and reports how
// many were removed.
func (os *orderedSeries) deleteBefore(cutoff int64) int {
	idx := sort.Search(len(os.samples), func(i int) bool {
		return os.samples[i].Timestamp >= cutoff
	})
	if idx == 0 {
		return 0
	}
	os.samples = append(os.samples[:0], os.samples[idx:]...)
	return idx
}

// rangeBounds returns the half-open index range [lo, hi) covering
// timestamps in [start, end].
func (os *orderedSeries) rangeBounds(start, end int64) (int, int) {
	lo := sort.Search(len(os.samples), func(i int) bool {
		return os.samples[i].Timestamp >= start
	})
	hi := sort.Search(len(os.samples), func(i int) bool {
		return os.samples[i].Timestamp > end
	})
	return lo, hi
}

func (os *orderedSeries) len() int {
	return len(os.samples)
}
