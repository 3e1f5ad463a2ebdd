package queue

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/metricadb/metrica/internal/models"
)

// RedisConfig represents Redis Streams configuration
type RedisConfig struct {
	URL      string // Redis URL (e.g., redis://localhost:6379)
	Password string // Optional password
	DB       int    // Database number (default: 0)
	Stream   string // Stream prefix (default: "metrica")
	Group    string // Consumer group name (default: "metrica-group")
	Consumer string // Consumer name (default: hostname)
}

// RedisQueue implements the Queue interface using Redis Streams with a
// consumer group. Unacked batches are redelivered to the group.
type RedisQueue struct {
	client        *redis.Client
	config        RedisConfig
	subscriptions map[string]context.CancelFunc
	mu            sync.RWMutex
}

// newRedisQueue creates a new Redis Streams queue instance
func newRedisQueue(cfg RedisConfig) (*RedisQueue, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		// Fallback to host:port form
		opts = &redis.Options{
			Addr:     cfg.URL,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if cfg.Stream == "" {
		cfg.Stream = "metrica"
	}
	if cfg.Group == "" {
		cfg.Group = "metrica-group"
	}
	if cfg.Consumer == "" {
		hostname, _ := os.Hostname()
		if hostname == "" {
			hostname = "consumer-1"
		}
		cfg.Consumer = hostname
	}

	return &RedisQueue{
		client:        client,
		config:        cfg,
		subscriptions: make(map[string]context.CancelFunc),
	}, nil
}

func (q *RedisQueue) streamName(subject string) string {
	return fmt.Sprintf("%s:%s", q.config.Stream, subject)
}

// Publish encodes a batch and appends it to the subject's stream
func (q *RedisQueue) Publish(ctx context.Context, subject string, samples []models.Sample) error {
	data, err := encodeSamples(samples)
	if err != nil {
		return err
	}

	stream := q.streamName(subject)
	_, err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		ID:     "*",
		Values: map[string]interface{}{
			"samples": data,
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to Redis stream %s: %w", stream, err)
	}

	return nil
}

// Subscribe consumes batches from the subject's stream through a
// consumer group. Handler failures leave the entry unacked for
// redelivery; undecodable entries are acked and dropped.
func (q *RedisQueue) Subscribe(subject string, handler SampleHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	stream := q.streamName(subject)
	ctx, cancel := context.WithCancel(context.Background())

	err := q.client.XGroupCreateMkStream(ctx, stream, q.config.Group, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		cancel()
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	go q.readStream(ctx, stream, handler)

	q.subscriptions[subject] = cancel
	return nil
}

func (q *RedisQueue) readStream(ctx context.Context, stream string, handler SampleHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.config.Group,
			Consumer: q.config.Consumer,
			Streams:  []string{stream, ">"},
			Count:    100,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			continue
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				raw, ok := msg.Values["samples"].(string)
				if !ok {
					q.client.XAck(ctx, stream, q.config.Group, msg.ID)
					continue
				}

				samples, err := decodeSamples([]byte(raw))
				if err != nil {
					q.client.XAck(ctx, stream, q.config.Group, msg.ID)
					continue
				}

				if err := handler(samples); err != nil {
					continue
				}

				q.client.XAck(ctx, stream, q.config.Group, msg.ID)
			}
		}
	}
}

// Unsubscribe unsubscribes from a subject
func (q *RedisQueue) Unsubscribe(subject string) error {
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

// Close closes the Redis connection
func (q *RedisQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for subject, cancel := range q.subscriptions {
		cancel()
		delete(q.subscriptions, subject)
	}

	return q.client.Close()
}
