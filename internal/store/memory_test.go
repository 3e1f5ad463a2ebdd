package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/metricadb/metrica/internal/logging"
	"github.com/metricadb/metrica/internal/models"
	"github.com/rs/zerolog"
)

func testLogger() *logging.Logger {
	return logging.NewWithWriter(nilWriter{}, zerolog.Disabled)
}

type nilWriter struct{}

func (nilWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	ms := NewMemoryStore(24*time.Hour, time.Hour, 0, testLogger())
	t.Cleanup(func() { _ = ms.Close() })
	return ms
}

func sample(typ string, value float64, ts int64) models.Sample {
	return models.Sample{Type: typ, Value: value, Timestamp: ts}
}

func TestMemoryStore_AddAndQuery(t *testing.T) {
	ms := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := ms.Add(ctx, sample("cpu", float64(i), int64(1000+i))); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	series, err := ms.Query(ctx, "cpu", 1000, 1009)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(series) != 10 {
		t.Fatalf("expected 10 samples, got %d", len(series))
	}
	for i := 1; i < len(series); i++ {
		if series[i].Timestamp < series[i-1].Timestamp {
			t.Fatal("query result not sorted ascending")
		}
	}
}

func TestMemoryStore_AddValidation(t *testing.T) {
	ms := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		s    models.Sample
	}{
		{"empty type", sample("", 1, 1000)},
		{"NaN value", sample("cpu", math.NaN(), 1000)},
		{"+Inf value", sample("cpu", math.Inf(1), 1000)},
		{"negative timestamp", sample("cpu", 1, -5)},
		{"absurd timestamp", sample("cpu", 1, models.MaxEpochMillis + 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ms.Add(ctx, tt.s)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
		})
	}

	if ms.TotalCount() != 0 {
		t.Errorf("rejected samples must not be stored, count=%d", ms.TotalCount())
	}
}

func TestMemoryStore_QueryAllTypesSorted(t *testing.T) {
	ms := newTestStore(t)
	ctx := context.Background()

	// Interleave two types out of order
	_ = ms.Add(ctx, sample("cpu", 1, 3000))
	_ = ms.Add(ctx, sample("mem", 2, 1000))
	_ = ms.Add(ctx, sample("cpu", 3, 2000))
	_ = ms.Add(ctx, sample("mem", 4, 4000))

	series, err := ms.Query(ctx, AllTypes, UnboundedStart, UnboundedEnd)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(series) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(series))
	}
	for i := 1; i < len(series); i++ {
		if series[i].Timestamp < series[i-1].Timestamp {
			t.Fatal("cross-type query result not sorted ascending")
		}
	}
}

func TestMemoryStore_QueryBounds(t *testing.T) {
	ms := newTestStore(t)
	ctx := context.Background()

	for i := int64(0); i < 100; i++ {
		_ = ms.Add(ctx, sample("cpu", 1, i*1000))
	}

	series, _ := ms.Query(ctx, "cpu", 10000, 19000)
	if len(series) != 10 {
		t.Errorf("bounded query expected 10 samples, got %d", len(series))
	}

	series, _ = ms.Query(ctx, "cpu", UnboundedStart, UnboundedEnd)
	if len(series) != 100 {
		t.Errorf("unbounded query expected 100 samples, got %d", len(series))
	}

	series, _ = ms.Query(ctx, "disk", UnboundedStart, UnboundedEnd)
	if len(series) != 0 {
		t.Errorf("unknown type query expected no samples, got %d", len(series))
	}
}

func TestMemoryStore_QuerySnapshotIsolation(t *testing.T) {
	ms := newTestStore(t)
	ctx := context.Background()

	_ = ms.Add(ctx, sample("cpu", 1, 1000))
	series, _ := ms.Query(ctx, "cpu", UnboundedStart, UnboundedEnd)

	// Mutations after the query must not be visible in the snapshot
	_ = ms.DeleteRange(ctx, "cpu", UnboundedStart, UnboundedEnd)
	_ = ms.Add(ctx, sample("cpu", 99, 2000))

	if len(series) != 1 || series[0].Value != 1 {
		t.Error("query result mutated by later writes")
	}
}

func TestMemoryStore_DeleteRangeIdempotent(t *testing.T) {
	ms := newTestStore(t)
	ctx := context.Background()

	for i := int64(0); i < 10; i++ {
		_ = ms.Add(ctx, sample("cpu", 1, i*1000))
	}

	if err := ms.DeleteRange(ctx, "cpu", 2000, 5000); err != nil {
		t.Fatalf("DeleteRange failed: %v", err)
	}
	after1, _ := ms.Query(ctx, "cpu", UnboundedStart, UnboundedEnd)
	count1 := ms.TotalCount()

	// Second identical call must leave the store unchanged
	if err := ms.DeleteRange(ctx, "cpu", 2000, 5000); err != nil {
		t.Fatalf("repeated DeleteRange failed: %v", err)
	}
	after2, _ := ms.Query(ctx, "cpu", UnboundedStart, UnboundedEnd)

	if len(after1) != 6 {
		t.Errorf("expected 6 samples after delete, got %d", len(after1))
	}
	if len(after2) != len(after1) || ms.TotalCount() != count1 {
		t.Error("repeated DeleteRange changed store state")
	}
}

func TestMemoryStore_SweepExpired(t *testing.T) {
	ms := newTestStore(t)
	ctx := context.Background()

	now := int64(1_000_000)
	retention := int64(60_000)

	// 5 expired, 5 fresh
	for i := int64(0); i < 5; i++ {
		_ = ms.Add(ctx, sample("cpu", 1, now-retention-1000-i))
	}
	for i := int64(0); i < 5; i++ {
		_ = ms.Add(ctx, sample("cpu", 1, now-i*1000))
	}

	removed := ms.SweepExpired(retention, now)
	if removed != 5 {
		t.Fatalf("expected 5 removed, got %d", removed)
	}

	// Even a query whose own start predates the cutoff must never see
	// anything older than now - retention
	series, _ := ms.Query(ctx, "cpu", UnboundedStart, UnboundedEnd)
	cutoff := now - retention
	for _, s := range series {
		if s.Timestamp < cutoff {
			t.Fatalf("query returned expired sample at %d, cutoff %d", s.Timestamp, cutoff)
		}
	}
	if len(series) != 5 {
		t.Errorf("expected 5 surviving samples, got %d", len(series))
	}
}

func TestMemoryStore_SweepConcurrentWithReadsAndWrites(t *testing.T) {
	ms := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		i := int64(0)
		for {
			select {
			case <-stop:
				return
			default:
			}
			_ = ms.Add(ctx, sample(fmt.Sprintf("t%d", i%8), float64(i), now+i))
			i++
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			_, _ = ms.Query(ctx, AllTypes, UnboundedStart, UnboundedEnd)
		}
	}()

	for i := 0; i < 50; i++ {
		ms.SweepExpired(1000, time.Now().UnixMilli())
	}

	close(stop)
	wg.Wait()
}

func TestMemoryStore_EvictionCapsCount(t *testing.T) {
	ms := NewMemoryStore(24*time.Hour, time.Hour, 100, testLogger())
	defer ms.Close()
	ctx := context.Background()

	for i := int64(0); i < 500; i++ {
		_ = ms.Add(ctx, sample("cpu", 1, i))
	}

	// Eviction runs on the background goroutine; give it a moment
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ms.TotalCount() <= 100 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if got := ms.TotalCount(); got > 100 {
		t.Errorf("expected eviction to cap count at 100, got %d", got)
	}

	// Survivors should be the newest samples
	series, _ := ms.Query(ctx, "cpu", UnboundedStart, UnboundedEnd)
	if len(series) > 0 && series[0].Timestamp < 400 {
		t.Errorf("expected oldest samples evicted first, oldest survivor at %d", series[0].Timestamp)
	}
}
