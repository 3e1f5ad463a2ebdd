// Package queue is the sample ingest bus: samples arrive as
// JSON-encoded batches over NATS JetStream, Redis Streams, Kafka, or an
// in-memory channel transport, and are written into the store by a
// consumer. The HTTP write path and the bus share the same validation.
package queue

import (
	"context"

	"github.com/metricadb/metrica/internal/models"
)

// Publisher publishes sample batches onto the bus
type Publisher interface {
	// Publish encodes and publishes one batch to a subject/topic
	Publish(ctx context.Context, subject string, samples []models.Sample) error

	// Close closes the connection
	Close() error
}

// Subscriber consumes sample batches from the bus
type Subscriber interface {
	// Subscribe subscribes to a subject/topic with a batch handler
	Subscribe(subject string, handler SampleHandler) error

	// Unsubscribe unsubscribes from a subject/topic
	Unsubscribe(subject string) error

	// Close closes the connection
	Close() error
}

// SampleHandler handles a decoded batch. Returning an error signals the
// transport to redeliver where the backend supports it.
type SampleHandler func(samples []models.Sample) error

// Queue combines Publisher and Subscriber interfaces
type Queue interface {
	Publisher
	Subscriber
}
