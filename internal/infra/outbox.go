package infra

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/warcamp/platform/internal/domain"
	"github.com/warcamp/platform/internal/repository"
)

// Publisher delivers one message to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// OutboxPoller relays event_outbox rows to a Publisher and deletes what it delivered.
type OutboxPoller struct {
	db          repository.DBTX
	outbox      repository.OutboxRepository
	publisher   Publisher
	logger      *slog.Logger
	topicPrefix string
	interval    time.Duration
	batchSize   int
}

// NewOutboxPoller creates a new outbox poller.
func NewOutboxPoller(db repository.DBTX, outbox repository.OutboxRepository, publisher Publisher, cfg *Config, logger *slog.Logger) *OutboxPoller {
	return &OutboxPoller{
		db:          db,
		outbox:      outbox,
		publisher:   publisher,
		logger:      logger,
		topicPrefix: cfg.KafkaTopicPrefix,
		interval:    cfg.OutboxPollInterval,
		batchSize:   cfg.OutboxBatchSize,
	}
}

// Run polls until ctx is cancelled.
func (p *OutboxPoller) Run(ctx context.Context) {
	p.logger.Info("outbox poller started", "interval", p.interval, "batch_size", p.batchSize)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox poller stopped")
			return
		case <-ticker.C:
			if _, err := p.Poll(ctx); err != nil {
				p.logger.Error("outbox poll error", "error", err)
			}
		}
	}
}

// Topic returns the Kafka topic for an event: <prefix>.<aggregate>.<event>.
func (p *OutboxPoller) Topic(e domain.OutboxDraft) string {
	return p.topicPrefix + "." + string(e.AggregateType) + "." + string(e.EventType)
}

// Poll publishes one batch in sequence order and returns how many events were
// delivered. A publish failure ends the batch so later events are never
// delivered ahead of it; the failed event and the rest are retried next poll.
func (p *OutboxPoller) Poll(ctx context.Context) (int, error) {
	events, err := p.outbox.FetchUnpublished(ctx, p.db, p.batchSize)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	var delivered []int64
	for _, e := range events {
		msg, err := json.Marshal(e)
		if err != nil {
			p.logger.Error("marshal outbox event", "event_id", e.EventID, "error", err)
			continue
		}
		if err := p.publisher.Publish(ctx, p.Topic(e), []byte(e.AggregateID), msg); err != nil {
			p.logger.Error("kafka publish failed", "event_id", e.EventID, "error", err)
			break
		}
		delivered = append(delivered, e.SeqID)
	}

	if err := p.outbox.MarkPublished(ctx, p.db, delivered); err != nil {
		return 0, err
	}

	p.logger.Debug("outbox poll complete", "published", len(delivered))
	return len(delivered), nil
}
