package store

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/metricadb/metrica/internal/logging"
	"github.com/metricadb/metrica/internal/models"
)

// numShards is the number of lock shards for concurrent write
// scalability. Up to numShards goroutines can write concurrently
// without blocking, assuming they hash to different shards.
const numShards = 32

// shard is one partition of the store's data with its own mutex. Each
// shard independently manages a subset of metric types based on FNV
// hash of the type name.
type shard struct {
	mu   sync.RWMutex
	data map[string]*orderedSeries // metric type -> sorted samples
}

// MemoryStore is an in-memory metric store with sharded locking. The
// retention sweeper runs on its own timer and holds one shard lock at a
// time, so it never blocks an in-flight query on another shard.
type MemoryStore struct {
	shards [numShards]shard

	retention     time.Duration
	sweepInterval time.Duration
	maxSamples    int64
	logger        *logging.Logger

	globalMu   sync.Mutex
	totalCount int64

	evictionCh chan struct{}
	stopCh     chan struct{}
	doneCh     chan struct{}
	closeOnce  sync.Once
}

var _ Store = (*MemoryStore)(nil)

// getShard returns the shard index for a metric type using FNV-1a hash.
func getShard(metricType string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(metricType))
	return h.Sum32() % numShards
}

// NewMemoryStore creates an in-memory store. When retention and
// sweepInterval are positive a background sweeper removes expired
// samples on a recurring timer. maxSamples is a soft cap: exceeding it
// triggers eviction of the oldest samples (0 disables the cap).
func NewMemoryStore(retention, sweepInterval time.Duration, maxSamples int, logger *logging.Logger) *MemoryStore {
	ms := &MemoryStore{
		retention:     retention,
		sweepInterval: sweepInterval,
		maxSamples:    int64(maxSamples),
		logger:        logger,
		evictionCh:    make(chan struct{}, 1),
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}

	for i := range ms.shards {
		ms.shards[i].data = make(map[string]*orderedSeries)
	}

	go ms.backgroundLoop()

	logger.Info("Memory store initialized",
		"retention", retention,
		"sweep_interval", sweepInterval,
		"max_samples", maxSamples,
		"num_shards", numShards)

	return ms
}

// Add validates and stores a sample. Only the shard owning the sample's
// type is locked, so writes to different types do not contend.
func (ms *MemoryStore) Add(_ context.Context, sample models.Sample) error {
	if err := sample.Validate(); err != nil {
		return &ValidationError{Reason: err.Error()}
	}

	s := &ms.shards[getShard(sample.Type)]

	s.mu.Lock()
	series, ok := s.data[sample.Type]
	if !ok {
		series = newOrderedSeries(64)
		s.data[sample.Type] = series
	}
	series.add(sample)
	s.mu.Unlock()

	ms.globalMu.Lock()
	ms.totalCount++
	needEviction := ms.maxSamples > 0 && ms.totalCount > ms.maxSamples
	ms.globalMu.Unlock()

	if needEviction {
		select {
		case ms.evictionCh <- struct{}{}:
		default:
		}
	}

	return nil
}

// Query returns matching samples sorted by timestamp ascending. The
// result is a copy; later writes or sweeps do not mutate it.
func (ms *MemoryStore) Query(_ context.Context, metricType string, start, end int64) (models.Series, error) {
	if metricType != AllTypes {
		s := &ms.shards[getShard(metricType)]
		s.mu.RLock()
		defer s.mu.RUnlock()

		series, ok := s.data[metricType]
		if !ok {
			return nil, nil
		}
		return series.queryRange(nil, start, end), nil
	}

	var result models.Series
	for i := range ms.shards {
		s := &ms.shards[i]
		s.mu.RLock()
		for _, series := range s.data {
			result = series.queryRange(result, start, end)
		}
		s.mu.RUnlock()
	}

	// Per-type runs are already sorted; a stable sort merges them
	// without reordering samples that share a timestamp.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})

	return result, nil
}

// DeleteRange removes samples of the given type in [start, end].
// Repeated calls with the same arguments are no-ops after the first.
func (ms *MemoryStore) DeleteRange(_ context.Context, metricType string, start, end int64) error {
	s := &ms.shards[getShard(metricType)]

	s.mu.Lock()
	removed := 0
	if series, ok := s.data[metricType]; ok {
		removed = series.deleteRange(start, end)
		if series.len() == 0 {
			delete(s.data, metricType)
		}
	}
	s.mu.Unlock()

	ms.addToCount(int64(-removed))
	return nil
}

// SweepExpired removes all samples with timestamp < now-retentionMs and
// reports how many were removed. Holds one shard lock at a time.
func (ms *MemoryStore) SweepExpired(retentionMs, now int64) int {
	cutoff := now - retentionMs
	removed := 0

	for i := range ms.shards {
		s := &ms.shards[i]
		s.mu.Lock()
		for metricType, series := range s.data {
			removed += series.deleteBefore(cutoff)
			if series.len() == 0 {
				delete(s.data, metricType)
			}
		}
		s.mu.Unlock()
	}

	ms.addToCount(int64(-removed))

	if removed > 0 {
		ms.logger.Debug("Retention sweep removed samples",
			"removed", removed,
			"cutoff", cutoff)
	}

	return removed
}

// Count reports held samples per metric type.
func (ms *MemoryStore) Count() map[string]int64 {
	counts := make(map[string]int64)
	for i := range ms.shards {
		s := &ms.shards[i]
		s.mu.RLock()
		for metricType, series := range s.data {
			counts[metricType] += int64(series.len())
		}
		s.mu.RUnlock()
	}
	return counts
}

// TotalCount returns the total number of held samples.
func (ms *MemoryStore) TotalCount() int64 {
	ms.globalMu.Lock()
	defer ms.globalMu.Unlock()
	return ms.totalCount
}

// Close stops the background sweeper.
func (ms *MemoryStore) Close() error {
	ms.closeOnce.Do(func() {
		close(ms.stopCh)
		<-ms.doneCh
	})
	return nil
}

// backgroundLoop runs the retention sweeper and handles eviction
// triggers from Add.
func (ms *MemoryStore) backgroundLoop() {
	defer close(ms.doneCh)

	interval := ms.sweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if ms.retention > 0 {
				ms.SweepExpired(ms.retention.Milliseconds(), time.Now().UnixMilli())
			}
		case <-ms.evictionCh:
			ms.evictOldest()
		case <-ms.stopCh:
			return
		}
	}
}

// evictOldest removes the oldest samples until the store is back under
// maxSamples. Eviction trims each type proportionally by cutting
// everything older than a cutoff chosen from the global oldest span.
func (ms *MemoryStore) evictOldest() {
	ms.globalMu.Lock()
	over := ms.totalCount - ms.maxSamples
	ms.globalMu.Unlock()
	if over <= 0 {
		return
	}

	// Walk shards removing the oldest sample per type until under cap.
	// Coarse but rarely hit: maxSamples is a soft safety cap.
	removed := int64(0)
	for removed < over {
		oldestShard, oldestType := ms.findOldest()
		if oldestType == "" {
			break
		}
		s := &ms.shards[oldestShard]
		s.mu.Lock()
		if series, ok := s.data[oldestType]; ok && series.len() > 0 {
			series.samples = series.samples[1:]
			removed++
			if series.len() == 0 {
				delete(s.data, oldestType)
			}
		}
		s.mu.Unlock()
	}

	ms.addToCount(-removed)
	ms.logger.Warn("Evicted oldest samples over capacity",
		"evicted", removed,
		"max_samples", ms.maxSamples)
}

// findOldest locates the shard and type holding the globally oldest
// sample.
func (ms *MemoryStore) findOldest() (int, string) {
	oldestShard := -1
	oldestType := ""
	oldestTs := int64(0)
	found := false

	for i := range ms.shards {
		s := &ms.shards[i]
		s.mu.RLock()
		for metricType, series := range s.data {
			if series.len() == 0 {
				continue
			}
			ts := series.samples[0].Timestamp
			if !found || ts < oldestTs {
				found = true
				oldestTs = ts
				oldestShard = i
				oldestType = metricType
			}
		}
		s.mu.RUnlock()
	}

	return oldestShard, oldestType
}

func (ms *MemoryStore) addToCount(delta int64) {
	ms.globalMu.Lock()
	ms.totalCount += delta
	if ms.totalCount < 0 {
		ms.totalCount = 0
	}
	ms.globalMu.Unlock()
}
