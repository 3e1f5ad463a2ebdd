package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/metricadb/metrica/internal/models"
)

// NATSQueue implements the Queue interface using NATS JetStream. Each
// published batch is one JetStream message, so redelivery granularity
// is the batch.
type NATSQueue struct {
	conn          *nats.Conn
	js            nats.JetStreamContext
	subscriptions map[string]*nats.Subscription
	mu            sync.RWMutex
}

// newNATSQueue creates a new NATS queue instance with JetStream enabled
func newNATSQueue(url string) (*NATSQueue, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &NATSQueue{
		conn:          conn,
		js:            js,
		subscriptions: make(map[string]*nats.Subscription),
	}, nil
}

// newNATSQueueWithConn creates a new NATS queue instance with existing connection (used in tests)
func newNATSQueueWithConn(conn *nats.Conn) (*NATSQueue, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &NATSQueue{
		conn:          conn,
		js:            js,
		subscriptions: make(map[string]*nats.Subscription),
	}, nil
}

// Publish encodes a batch and publishes it to a subject via JetStream
func (q *NATSQueue) Publish(ctx context.Context, subject string, samples []models.Sample) error {
	data, err := encodeSamples(samples)
	if err != nil {
		return err
	}

	future, err := q.js.PublishAsync(subject, data)
	if err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}

	select {
	case <-future.Ok():
		return nil
	case err := <-future.Err():
		return fmt.Errorf("publish to subject %s not acknowledged: %w", subject, err)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe consumes batches from a subject with a JetStream durable
// consumer: persisted stream, manual acknowledgment, bounded in-flight
// messages. Batches that fail to decode are acked and dropped since
// redelivery cannot repair them; handler failures are NAKed for
// redelivery.
func (q *NATSQueue) Subscribe(subject string, handler SampleHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	streamName := "metrica-" + sanitizeConsumerName(subject)
	_, err := q.js.StreamInfo(streamName)
	if err != nil {
		_, err = q.js.AddStream(&nats.StreamConfig{
			Name:     streamName,
			Subjects: []string{subject},
			Storage:  nats.FileStorage,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream for subject %s: %w", subject, err)
		}
	}

	// Consumer names can only contain A-Z, a-z, 0-9, dash and underscore
	durableName := "consumer-" + sanitizeConsumerName(subject)

	sub, err := q.js.Subscribe(subject, func(msg *nats.Msg) {
		samples, err := decodeSamples(msg.Data)
		if err != nil {
			_ = msg.Ack()
			return
		}

		if err := handler(samples); err != nil {
			_ = msg.Nak()
			return
		}

		_ = msg.Ack()
	},
		nats.Durable(durableName),
		nats.ManualAck(),
		nats.MaxAckPending(100),
		nats.AckWait(30*time.Second),
		nats.MaxDeliver(3),
		nats.DeliverAll(),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	q.subscriptions[subject] = sub
	return nil
}

// Unsubscribe unsubscribes from a subject
func (q *NATSQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	sub, exists := q.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}

	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("failed to unsubscribe from subject %s: %w", subject, err)
	}

	delete(q.subscriptions, subject)
	return nil
}

// Close closes the NATS connection and all subscriptions
func (q *NATSQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for subject, sub := range q.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			continue
		}
		delete(q.subscriptions, subject)
	}

	q.conn.Close()
	return nil
}

// sanitizeConsumerName replaces characters NATS rejects in stream and
// consumer names with underscores.
func sanitizeConsumerName(subject string) string {
	result := make([]byte, 0, len(subject))
	for i := 0; i < len(subject); i++ {
		c := subject[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == '_' {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}
	return string(result)
}
