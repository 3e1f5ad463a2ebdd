// Package store holds the sample set and serves range queries over it.
// It is the only shared mutable resource in the engine: writers (Add,
// DeleteRange, SweepExpired) are serialized per shard and readers get a
// copied snapshot, so the retention sweeper never races an in-flight
// query.
package store

import (
	"context"
	"fmt"
	"math"

	"github.com/metricadb/metrica/internal/models"
)

// Store is the abstract persistence boundary the engine is written
// against. The in-memory implementation never blocks, but backends that
// do I/O take their suspension points here, so the mutating and reading
// methods accept a context.
type Store interface {
	// Add validates and stores a sample. A malformed sample fails with
	// *ValidationError and is queryable immediately on success.
	Add(ctx context.Context, sample models.Sample) error

	// Query returns all samples matching the type filter (AllTypes
	// matches everything) with timestamps in [start, end], sorted by
	// timestamp ascending.
	Query(ctx context.Context, metricType string, start, end int64) (models.Series, error)

	// DeleteRange removes samples of the given type in [start, end].
	// Idempotent: repeated calls are no-ops after the first.
	DeleteRange(ctx context.Context, metricType string, start, end int64) error

	// SweepExpired removes all samples with timestamp < now-retentionMs
	// and reports how many were removed. Safe to run concurrently with
	// Add and Query.
	SweepExpired(retentionMs, now int64) int

	// Count reports held samples per metric type.
	Count() map[string]int64

	// Close stops background work.
	Close() error
}

// Unbounded marks an absent query bound.
const (
	UnboundedStart = int64(math.MinInt64)
	UnboundedEnd   = int64(math.MaxInt64)
)

// ValidationError reports a malformed sample rejected on ingest.
// Rejected samples are not retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid sample: %s", e.Reason)
}

// AllTypes matches every metric type in Query and is the zero value of
// the type filter.
const AllTypes = ""
