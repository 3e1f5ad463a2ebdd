package queue

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/metricadb/metrica/internal/logging"
	"github.com/metricadb/metrica/internal/models"
	"github.com/metricadb/metrica/internal/store"
)

// IngestConsumer binds a Subscriber to the store: every batch arriving
// on the configured subject goes through the same validation as the
// HTTP write path. Malformed samples are counted and dropped rather
// than triggering redelivery, since redelivery cannot repair them.
type IngestConsumer struct {
	logger     *logging.Logger
	store      store.Store
	subscriber Subscriber
	subject    string

	accepted atomic.Int64
	rejected atomic.Int64
}

// NewIngestConsumer creates a new IngestConsumer
func NewIngestConsumer(logger *logging.Logger, st store.Store, sub Subscriber, subject string) *IngestConsumer {
	return &IngestConsumer{
		logger:     logger,
		store:      st,
		subscriber: sub,
		subject:    subject,
	}
}

// Start subscribes to the ingest subject
func (c *IngestConsumer) Start() error {
	if c.subject == "" {
		return fmt.Errorf("ingest subject not configured")
	}
	if err := c.subscriber.Subscribe(c.subject, c.handleBatch); err != nil {
		return fmt.Errorf("failed to subscribe to ingest subject %s: %w", c.subject, err)
	}
	c.logger.Info("Queue ingest started", "subject", c.subject)
	return nil
}

// Stop unsubscribes from the ingest subject
func (c *IngestConsumer) Stop() error {
	return c.subscriber.Unsubscribe(c.subject)
}

// Accepted reports samples written since Start
func (c *IngestConsumer) Accepted() int64 {
	return c.accepted.Load()
}

// Rejected reports samples dropped by validation since Start
func (c *IngestConsumer) Rejected() int64 {
	return c.rejected.Load()
}

func (c *IngestConsumer) handleBatch(samples []models.Sample) error {
	ctx := context.Background()

	accepted := 0
	rejected := 0
	for _, sample := range samples {
		if err := c.store.Add(ctx, sample); err != nil {
			var validation *store.ValidationError
			if errors.As(err, &validation) {
				rejected++
				continue
			}
			// A store failure is retryable, let the transport redeliver
			c.logger.Error("Queue ingest write failed",
				"subject", c.subject,
				"error", err)
			return err
		}
		accepted++
	}

	c.accepted.Add(int64(accepted))
	c.rejected.Add(int64(rejected))

	if rejected > 0 {
		c.logger.Warn("Queue ingest dropped malformed samples",
			"subject", c.subject,
			"accepted", accepted,
			"rejected", rejected)
	}
	return nil
}
