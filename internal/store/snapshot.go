package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/snappy"
	"github.com/metricadb/metrica/internal/models"
)

// Snapshot support: best-effort dump/restore of the sample set as a
// snappy-compressed JSON file. Snapshots are operator tooling, not a
// durability guarantee; the engine makes no exactly-once or
// crash-consistency promises.

// SaveSnapshot writes all held samples to path. The file is written to
// a temp name first and renamed so a crash mid-write never leaves a
// truncated snapshot behind.
func (ms *MemoryStore) SaveSnapshot(path string) error {
	samples, err := ms.Query(context.Background(), AllTypes, UnboundedStart, UnboundedEnd)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(samples)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	compressed := snappy.Encode(nil, raw)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to finalize snapshot: %w", err)
	}

	ms.logger.Info("Snapshot saved",
		"path", path,
		"samples", len(samples),
		"compressed_bytes", len(compressed))

	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot and adds its
// samples through the normal validated ingest path. Samples that fail
// validation are skipped and counted, not fatal.
func (ms *MemoryStore) LoadSnapshot(path string) (int, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read snapshot: %w", err)
	}

	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return 0, fmt.Errorf("snappy decompress failed: %w", err)
	}

	var samples []models.Sample
	if err := json.Unmarshal(raw, &samples); err != nil {
		return 0, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	loaded := 0
	skipped := 0
	ctx := context.Background()
	for _, s := range samples {
		if err := ms.Add(ctx, s); err != nil {
			skipped++
			continue
		}
		loaded++
	}

	if skipped > 0 {
		ms.logger.Warn("Snapshot contained invalid samples",
			"skipped", skipped,
			"path", path)
	}
	ms.logger.Info("Snapshot loaded", "path", path, "samples", loaded)

	return loaded, nil
}
