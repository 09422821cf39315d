package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"mindsukoon.app/companion/common/logger"
	"mindsukoon.app/companion/internal/model"
	"mindsukoon.app/companion/internal/queue"
	"mindsukoon.app/companion/internal/store"
)

type Config struct {
	MaxAttempts int
	// ErrorBackoff is the pause after a failed read. Defaults to one second.
	ErrorBackoff time.Duration
}

// Worker drains the safety event stream into Postgres.
type Worker struct {
	consumer Consumer
	events   store.SafetyEventStore
	cfg      Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer Consumer, events store.SafetyEventStore, cfg Config) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = time.Second
	}
	return &Worker{
		consumer:  consumer,
		events:    events,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "companion.worker",
	})
	slog.InfoContext(ctx, "worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				select {
				case <-ctx.Done():
				case <-w.stopCh:
				case <-time.After(w.cfg.ErrorBackoff):
				}
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		if err := w.processMessageSafe(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "message processing failed",
				"error", err,
				"message_id", msg.ID,
				"event_id", msg.EventID)
			w.handleFailedMessage(ctx, msg, err)
		}
	}

	return nil
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing",
				"panic", r,
				"message_id", msg.ID,
				"event_id", msg.EventID)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// ProcessMessage records one event and acks it. Exported so the reclaimer
// can reuse it.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	sc := logger.StartSpanFromTraceID(ctx, msg.TraceID, "worker.record_safety_event")
	defer sc.End()
	ctx = sc.Context()

	msgID := msg.ID
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SessionID: &msg.SessionID,
		EventID:   &msg.EventID,
		RiskTier:  &msg.RiskTier,
		MessageID: &msgID,
	})
	sc.Span().SetAttributes(
		attribute.Int64("safety.event_id", msg.EventID),
		attribute.String("safety.risk_tier", msg.RiskTier),
		attribute.Int("queue.attempt", msg.Attempt),
	)

	slog.InfoContext(ctx, "processing safety event", "attempt", msg.Attempt)

	created, err := w.events.Create(ctx, &model.SafetyEvent{
		ID:            msg.EventID,
		SessionID:     msg.SessionID,
		TurnID:        msg.TurnID,
		RiskTier:      msg.RiskTier,
		MatchedPhrase: msg.Phrase,
		OccurredAt:    msg.OccurredAt,
	})
	if err != nil {
		sc.RecordError(err)
		// Don't ACK; the caller requeues or dead-letters.
		return fmt.Errorf("recording safety event: %w", err)
	}

	if !created {
		slog.InfoContext(ctx, "safety event already recorded, skipping")
	}

	if err := w.consumer.Ack(ctx, msg); err != nil {
		// Reclaiming an already recorded event is a no-op insert.
		slog.WarnContext(ctx, "failed to ACK message", "error", err)
	}

	return nil
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "max attempts reached, sending to DLQ",
			"message_id", msg.ID,
			"event_id", msg.EventID,
			"attempts", msg.Attempt)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	slog.WarnContext(ctx, "requeuing failed message",
		"message_id", msg.ID,
		"event_id", msg.EventID,
		"attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
}
