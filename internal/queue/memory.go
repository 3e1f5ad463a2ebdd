package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/metricadb/metrica/internal/models"
)

// MemoryQueue implements the Queue interface over in-process channels.
// Used in tests and single-node development setups with no broker.
type MemoryQueue struct {
	channels      map[string]chan []models.Sample
	subscriptions map[string]context.CancelFunc
	mu            sync.RWMutex
}

// newMemoryQueue creates a new in-memory queue instance
func newMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		channels:      make(map[string]chan []models.Sample),
		subscriptions: make(map[string]context.CancelFunc),
	}
}

func (q *MemoryQueue) getOrCreateChannel(subject string) chan []models.Sample {
	q.mu.Lock()
	defer q.mu.Unlock()

	if ch, exists := q.channels[subject]; exists {
		return ch
	}

	ch := make(chan []models.Sample, 10000)
	q.channels[subject] = ch
	return ch
}

// Publish delivers a batch to the subject's channel. The batch is
// copied so the caller may reuse the slice.
func (q *MemoryQueue) Publish(ctx context.Context, subject string, samples []models.Sample) error {
	ch := q.getOrCreateChannel(subject)

	batch := make([]models.Sample, len(samples))
	copy(batch, samples)

	select {
	case ch <- batch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("channel full for subject: %s", subject)
	}
}

// Subscribe consumes batches from the subject's channel in a background
// goroutine until Unsubscribe or Close.
func (q *MemoryQueue) Subscribe(subject string, handler SampleHandler) error {
	q.mu.Lock()
	if _, exists := q.subscriptions[subject]; exists {
		q.mu.Unlock()
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}
	q.mu.Unlock()

	ch := q.getOrCreateChannel(subject)
	ctx, cancel := context.WithCancel(context.Background())

	q.mu.Lock()
	q.subscriptions[subject] = cancel
	q.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case batch := <-ch:
				// No redelivery in memory transport, failed batches drop
				_ = handler(batch)
			}
		}
	}()

	return nil
}

// Unsubscribe stops the subject's consumer goroutine
func (q *MemoryQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	cancel, exists := q.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}

	cancel()
	delete(q.subscriptions, subject)
	return nil
}

// Close cancels all subscriptions and closes all channels
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for subject, cancel := range q.subscriptions {
		cancel()
		delete(q.subscriptions, subject)
	}

	for subject, ch := range q.channels {
		close(ch)
		delete(q.channels, subject)
	}

	return nil
}

// GetPendingCount returns the number of pending batches for a subject (for testing)
func (q *MemoryQueue) GetPendingCount(subject string) int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if ch, exists := q.channels[subject]; exists {
		return len(ch)
	}
	return 0
}
