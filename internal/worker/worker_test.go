package worker_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mindsukoon.app/companion/internal/model"
	"mindsukoon.app/companion/internal/queue"
	"mindsukoon.app/companion/internal/worker"
)

func safetyMessage(id string, eventID int64, attempt int) queue.Message {
	return queue.Message{
		ID:         id,
		EventID:    eventID,
		SessionID:  "session-1",
		RiskTier:   "high_risk",
		Phrase:     "end my life",
		OccurredAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Attempt:    attempt,
	}
}

var _ = Describe("Worker", func() {
	var (
		consumer *mockConsumer
		events   *mockEventStore
		w        *worker.Worker
		ctx      context.Context
		cancel   context.CancelFunc
		done     chan error
	)

	BeforeEach(func() {
		consumer = &mockConsumer{}
		events = newMockEventStore()
		ctx, cancel = context.WithCancel(context.Background())
		DeferCleanup(func() { cancel() })
	})

	start := func() {
		w = worker.New(consumer, events, worker.Config{MaxAttempts: 3, ErrorBackoff: 5 * time.Millisecond})
		done = make(chan error, 1)
		go func() { done <- w.Run(ctx) }()
	}

	stop := func() {
		w.Stop()
		Eventually(done).Should(Receive(BeNil()))
	}

	Describe("ProcessMessage", func() {
		It("records the event and acks", func() {
			w = worker.New(consumer, events, worker.Config{})

			Expect(w.ProcessMessage(ctx, safetyMessage("1-0", 10, 1))).To(Succeed())

			stored, _ := events.GetByID(ctx, 10)
			Expect(stored).NotTo(BeNil())
			Expect(stored.SessionID).To(Equal("session-1"))
			Expect(stored.MatchedPhrase).To(Equal("end my life"))
			acked, _, _ := consumer.snapshot()
			Expect(acked).To(ConsistOf("1-0"))
		})

		It("acks duplicates without writing twice", func() {
			w = worker.New(consumer, events, worker.Config{})

			Expect(w.ProcessMessage(ctx, safetyMessage("1-0", 10, 1))).To(Succeed())
			Expect(w.ProcessMessage(ctx, safetyMessage("2-0", 10, 1))).To(Succeed())

			Expect(events.count()).To(Equal(1))
			acked, _, _ := consumer.snapshot()
			Expect(acked).To(ConsistOf("1-0", "2-0"))
		})

		It("returns store errors without acking", func() {
			events.createFn = func(*model.SafetyEvent) error { return errors.New("db down") }
			w = worker.New(consumer, events, worker.Config{})

			Expect(w.ProcessMessage(ctx, safetyMessage("1-0", 10, 1))).To(MatchError(ContainSubstring("db down")))
			acked, _, _ := consumer.snapshot()
			Expect(acked).To(BeEmpty())
		})
	})

	Describe("Run", func() {
		It("drains batches from the stream", func() {
			consumer.batches = [][]queue.Message{{safetyMessage("1-0", 1, 1), safetyMessage("2-0", 2, 1)}}
			start()

			Eventually(events.count).Should(Equal(2))
			stop()
		})

		It("requeues failures below the attempt limit", func() {
			events.createFn = func(*model.SafetyEvent) error { return errors.New("db down") }
			consumer.batches = [][]queue.Message{{safetyMessage("1-0", 1, 1)}}
			start()

			Eventually(func() []string {
				_, requeued, _ := consumer.snapshot()
				return requeued
			}).Should(ConsistOf("1-0"))
			stop()
		})

		It("dead-letters failures at the attempt limit", func() {
			events.createFn = func(*model.SafetyEvent) error { return errors.New("db down") }
			consumer.batches = [][]queue.Message{{safetyMessage("1-0", 1, 3)}}
			start()

			Eventually(func() []string {
				_, _, dlq := consumer.snapshot()
				return dlq
			}).Should(ConsistOf("1-0"))
			stop()
		})

		It("recovers from panics in processing", func() {
			events.createFn = func(*model.SafetyEvent) error { panic("nil pool") }
			consumer.batches = [][]queue.Message{{safetyMessage("1-0", 1, 1)}}
			start()

			Eventually(func() []string {
				_, requeued, _ := consumer.snapshot()
				return requeued
			}).Should(ConsistOf("1-0"))
			stop()
		})

		It("keeps running after a read error", func() {
			consumer.readErr = errors.New("connection refused")
			consumer.batches = [][]queue.Message{{safetyMessage("1-0", 1, 1)}}
			start()

			Eventually(events.count).Should(Equal(1))
			stop()
		})

		It("returns the context error on cancellation", func() {
			start()
			cancel()
			Eventually(done).Should(Receive(MatchError(context.Canceled)))
		})
	})
})
