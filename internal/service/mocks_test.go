package service_test

import (
	"context"
	"errors"
	"sync"

	"mindsukoon.app/companion/common/llm"
	"mindsukoon.app/companion/internal/companion"
	"mindsukoon.app/companion/internal/model"
	"mindsukoon.app/companion/internal/queue"
	"mindsukoon.app/companion/internal/service"
)

// echoClient answers every call with a fixed reply.
type echoClient struct {
	mu    sync.Mutex
	reply string
	calls int
	// deadlineSeen records whether the last call carried a deadline.
	deadlineSeen bool
}

func (c *echoClient) ChatWithTools(ctx context.Context, _ llm.AgentRequest) (*llm.AgentResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	_, c.deadlineSeen = ctx.Deadline()
	return &llm.AgentResponse{Content: c.reply, FinishReason: "stop"}, nil
}

func (c *echoClient) Model() string { return "echo" }

func (c *echoClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type observerFunc func(ctx context.Context, event companion.RiskEvent)

func (f observerFunc) ObserveRisk(ctx context.Context, event companion.RiskEvent) { f(ctx, event) }

func newFactory(client llm.AgentClient, observer companion.RiskObserver) service.AssistantFactory {
	return func(sessionID string) *companion.Assistant {
		o := companion.NewOrchestrator(client, nil, companion.DefaultOrchestratorConfig())
		return companion.NewAssistant(sessionID, nil, o, observer, companion.AssistantConfig{ToolsEnabled: true})
	}
}

type mockProducer struct {
	mu       sync.Mutex
	messages []queue.SafetyEventMessage
	err      error
	ctxErr   error
}

func (m *mockProducer) Enqueue(ctx context.Context, msg queue.SafetyEventMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctxErr = ctx.Err()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockProducer) Close() error { return nil }

type mockEventStore struct {
	listFn func(ctx context.Context, limit int) ([]model.SafetyEvent, error)
}

func (m *mockEventStore) Create(context.Context, *model.SafetyEvent) (bool, error) {
	return true, nil
}

func (m *mockEventStore) GetByID(context.Context, int64) (*model.SafetyEvent, error) {
	return nil, errors.New("not implemented")
}

func (m *mockEventStore) ListRecent(ctx context.Context, limit int) ([]model.SafetyEvent, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit)
	}
	return nil, nil
}
