package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/metricadb/metrica/internal/models"
	"github.com/metricadb/metrica/internal/utils"
)

// KafkaConfig represents Apache Kafka configuration
type KafkaConfig struct {
	Brokers       []string      // Kafka broker addresses
	GroupID       string        // Consumer group ID (default: "metrica-group")
	BatchSize     int           // Batch size for producer (default: 100)
	BatchTimeout  time.Duration // Batch timeout for producer (default: 10ms)
	MaxRetries    int           // Max write attempts (default: 3)
	RetryBackoff  time.Duration // Backoff between commit retries (default: 100ms)
	CommitRetries int           // Consumer commit retries (default: 3)
}

// KafkaQueue implements the Queue interface using Apache Kafka. One
// published batch is one Kafka message; the consumer group gives
// at-least-once delivery per batch.
type KafkaQueue struct {
	config        KafkaConfig
	writers       map[string]*kafka.Writer
	readers       map[string]*kafka.Reader
	subscriptions map[string]context.CancelFunc
	mu            sync.RWMutex
}

// newKafkaQueue creates a new Kafka queue instance
func newKafkaQueue(cfg KafkaConfig) (*KafkaQueue, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not configured")
	}

	if cfg.GroupID == "" {
		cfg.GroupID = "metrica-group"
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = utils.DefaultMaxRetries
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = utils.DefaultRetryBackoff
	}
	if cfg.CommitRetries == 0 {
		cfg.CommitRetries = utils.DefaultMaxRetries
	}

	return &KafkaQueue{
		config:        cfg,
		writers:       make(map[string]*kafka.Writer),
		readers:       make(map[string]*kafka.Reader),
		subscriptions: make(map[string]context.CancelFunc),
	}, nil
}

func (q *KafkaQueue) getOrCreateWriter(topic string) *kafka.Writer {
	q.mu.Lock()
	defer q.mu.Unlock()

	if writer, exists := q.writers[topic]; exists {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(q.config.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    q.config.BatchSize,
		BatchTimeout: q.config.BatchTimeout,
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  q.config.MaxRetries,
	}

	q.writers[topic] = writer
	return writer
}

// Publish encodes a batch and writes it to a Kafka topic
func (q *KafkaQueue) Publish(ctx context.Context, subject string, samples []models.Sample) error {
	data, err := encodeSamples(samples)
	if err != nil {
		return err
	}

	writer := q.getOrCreateWriter(subject)
	err = writer.WriteMessages(ctx, kafka.Message{
		Value: data,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to kafka topic %s: %w", subject, err)
	}

	return nil
}

// Subscribe consumes batches from a Kafka topic with a consumer group.
// Handler failures skip the commit so the batch is redelivered;
// undecodable messages are committed and dropped.
func (q *KafkaQueue) Subscribe(subject string, handler SampleHandler) error {
	q.mu.Lock()
	if _, exists := q.subscriptions[subject]; exists {
		q.mu.Unlock()
		return fmt.Errorf("already subscribed to topic: %s", subject)
	}
	q.mu.Unlock()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  q.config.Brokers,
		GroupID:  q.config.GroupID,
		Topic:    subject,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  1 * time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())

	q.mu.Lock()
	q.readers[subject] = reader
	q.subscriptions[subject] = cancel
	q.mu.Unlock()

	go q.consumeMessages(ctx, reader, handler)

	return nil
}

func (q *KafkaQueue) consumeMessages(ctx context.Context, reader *kafka.Reader, handler SampleHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}

		samples, err := decodeSamples(msg.Value)
		if err != nil {
			q.commitWithRetries(ctx, reader, msg)
			continue
		}

		if err := handler(samples); err != nil {
			continue
		}

		q.commitWithRetries(ctx, reader, msg)
	}
}

func (q *KafkaQueue) commitWithRetries(ctx context.Context, reader *kafka.Reader, msg kafka.Message) {
	for i := 0; i < q.config.CommitRetries; i++ {
		if err := reader.CommitMessages(ctx, msg); err == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
		time.Sleep(q.config.RetryBackoff)
	}
}

// Unsubscribe unsubscribes from a Kafka topic
func (q *KafkaQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	cancel, exists := q.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to topic: %s", subject)
	}

	cancel()

	if reader, ok := q.readers[subject]; ok {
		_ = reader.Close()
		delete(q.readers, subject)
	}

	delete(q.subscriptions, subject)
	return nil
}

// Close closes all Kafka connections
func (q *KafkaQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	var lastErr error

	for subject, cancel := range q.subscriptions {
		cancel()
		if reader, ok := q.readers[subject]; ok {
			if err := reader.Close(); err != nil {
				lastErr = err
			}
		}
		delete(q.subscriptions, subject)
		delete(q.readers, subject)
	}

	for topic, writer := range q.writers {
		if err := writer.Close(); err != nil {
			lastErr = err
		}
		delete(q.writers, topic)
	}

	return lastErr
}
