package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// SafetyEventMessage announces an elevated-risk turn. It never carries the
// user's message text.
type SafetyEventMessage struct {
	EventID    int64
	SessionID  string
	TurnID     int64
	RiskTier   string
	Phrase     string
	OccurredAt time.Time
	TraceID    *string
	Attempt    int
}

type Producer interface {
	Enqueue(ctx context.Context, msg SafetyEventMessage) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, msg SafetyEventMessage) error {
	attempt := msg.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	m := Message{
		EventID:    msg.EventID,
		SessionID:  msg.SessionID,
		TurnID:     msg.TurnID,
		RiskTier:   msg.RiskTier,
		Phrase:     msg.Phrase,
		OccurredAt: msg.OccurredAt,
	}
	if msg.TraceID != nil {
		m.TraceID = *msg.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: messageValues(m, attempt),
	}).Err(); err != nil {
		return fmt.Errorf("enqueue safety event: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued safety event", "event_id", msg.EventID, "risk_tier", msg.RiskTier, "attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
