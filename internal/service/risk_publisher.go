package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"mindsukoon.app/companion/common/id"
	"mindsukoon.app/companion/common/logger"
	"mindsukoon.app/companion/internal/companion"
	"mindsukoon.app/companion/internal/queue"
)

const publishTimeout = 2 * time.Second

// RiskPublisher forwards elevated-risk turns to the safety event stream.
// Publishing failures are logged and never affect the reply.
type RiskPublisher struct {
	producer queue.Producer
}

func NewRiskPublisher(producer queue.Producer) *RiskPublisher {
	return &RiskPublisher{producer: producer}
}

func (p *RiskPublisher) ObserveRisk(ctx context.Context, event companion.RiskEvent) {
	if p == nil || p.producer == nil {
		return
	}

	eventID := id.New()
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		EventID:   &eventID,
		Component: "companion.service.risk_publisher",
	})

	msg := queue.SafetyEventMessage{
		EventID:    eventID,
		SessionID:  event.SessionID,
		TurnID:     event.TurnID,
		RiskTier:   event.Tier.String(),
		Phrase:     event.Phrase,
		OccurredAt: event.OccurredAt,
		Attempt:    1,
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		traceID := sc.TraceID().String()
		msg.TraceID = &traceID
	}

	// The turn's deadline must not cut the audit write short.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.producer.Enqueue(pubCtx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to publish safety event", "error", err)
	}
}
