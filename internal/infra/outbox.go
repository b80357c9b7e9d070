package infra

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meowrun/platform/internal/repository"
)

// OutboxPoller drains the event_outbox table and publishes events to Kafka.
// Published rows are deleted; delivery is at-least-once, so downstream
// consumers deduplicate on event_id.
type OutboxPoller struct {
	pool     *pgxpool.Pool
	outbox   repository.OutboxRepository
	producer *KafkaProducer
	topic    string
	logger   *slog.Logger

	// Interval and BatchSize may be tuned before Run is called.
	Interval  time.Duration
	BatchSize int
}

// NewOutboxPoller creates an outbox poller publishing to the given topic.
func NewOutboxPoller(pool *pgxpool.Pool, outbox repository.OutboxRepository, producer *KafkaProducer, topic string, logger *slog.Logger) *OutboxPoller {
	return &OutboxPoller{
		pool:      pool,
		outbox:    outbox,
		producer:  producer,
		topic:     topic,
		logger:    logger,
		Interval:  500 * time.Millisecond,
		BatchSize: 100,
	}
}

// Run polls until ctx is cancelled. Blocks; callers run it in a goroutine or
// as a binary's main loop.
func (p *OutboxPoller) Run(ctx context.Context) {
	p.logger.Info("outbox poller started", "interval", p.Interval, "batch_size", p.BatchSize, "topic", p.topic)

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox poller stopped")
			return
		case <-ticker.C:
			if err := p.drain(ctx); err != nil {
				p.logger.Error("outbox poll error", "error", err)
			}
		}
	}
}

func (p *OutboxPoller) drain(ctx context.Context) error {
	events, err := p.outbox.FetchUnpublished(ctx, p.pool, p.BatchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	published := make([]int64, 0, len(events))
	for _, e := range events {
		msg, err := json.Marshal(e.OutboxDraft)
		if err != nil {
			p.logger.Error("marshal outbox event", "event_id", e.EventID, "error", err)
			continue
		}
		if err := p.producer.Publish(ctx, p.topic, []byte(e.PartitionKey), msg); err != nil {
			p.logger.Error("kafka publish failed", "event_id", e.EventID, "error", err)
			// Stop at the first failure so per-partition ordering holds.
			break
		}
		published = append(published, e.SeqID)
	}

	if err := p.outbox.MarkPublished(ctx, p.pool, published); err != nil {
		return err
	}

	p.logger.Debug("outbox drained", "published", len(published))
	return nil
}
