package companion

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"mindsukoon.app/companion/common/llm"
	"mindsukoon.app/companion/common/logger"
	"mindsukoon.app/companion/internal/knowledge"
	"mindsukoon.app/companion/internal/safety"
)

// Path names how a reply was produced.
type Path string

const (
	PathDirect   Path = "direct"
	PathTool     Path = "tool"
	PathFallback Path = "fallback"
	PathCrisis   Path = "crisis"
)

const (
	defaultTemperature     = 0.7
	defaultMaxTokens       = 500
	defaultSimpleMaxTokens = 300
)

type OrchestratorConfig struct {
	Temperature     float64
	MaxTokens       int
	SimpleMaxTokens int
	HistorySize     int
}

// DefaultOrchestratorConfig returns the sampling settings used in production.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		Temperature:     defaultTemperature,
		MaxTokens:       defaultMaxTokens,
		SimpleMaxTokens: defaultSimpleMaxTokens,
		HistorySize:     HistoryCapacity,
	}
}

// Response is the outcome of one generated turn. Err is set only on the
// fallback path, in which case Text is FallbackMessage.
type Response struct {
	Text      string
	Path      Path
	ToolCalls int
	Err       error
}

// Orchestrator runs the model exchange for a conversation and owns its
// history. Turns are serialized, so one Orchestrator serves one conversation
// safely from concurrent callers. A turn whose context ends while it waits
// for the previous one falls back without calling the model.
type Orchestrator struct {
	llm     llm.AgentClient
	tools   *ToolRegistry
	history *History
	cfg     OrchestratorConfig

	// turn holds a token while a turn runs.
	turn chan struct{}
}

func NewOrchestrator(client llm.AgentClient, tools *ToolRegistry, cfg OrchestratorConfig) *Orchestrator {
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.SimpleMaxTokens == 0 {
		cfg.SimpleMaxTokens = defaultSimpleMaxTokens
	}
	if tools == nil {
		tools = NewToolRegistry()
	}
	return &Orchestrator{
		llm:     client,
		tools:   tools,
		history: NewHistory(cfg.HistorySize),
		cfg:     cfg,
		turn:    make(chan struct{}, 1),
	}
}

// History returns a snapshot of the completed turns.
func (o *Orchestrator) History() []Turn {
	return o.history.Turns()
}

// Respond produces a reply using the two-call tool flow: the first call may
// request tools; if it does, their results are fed back and a second call
// without tools produces the answer. Model failures yield FallbackMessage and
// leave history untouched.
func (o *Orchestrator) Respond(ctx context.Context, message string, snippets []knowledge.Snippet, tier safety.RiskTier) Response {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "companion.orchestrator"})
	if err := o.acquire(ctx); err != nil {
		return o.fallback(ctx, &GenerationError{Phase: "wait", Err: err})
	}
	defer o.release()

	start := time.Now()

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: SystemPrompt},
		{Role: llm.RoleUser, Content: BuildUserPrompt(message, snippets, tier, o.history.Recent(PromptTurns))},
	}

	first, err := o.call(ctx, "companion.first_call", llm.AgentRequest{
		Messages:    messages,
		Tools:       o.tools.Definitions(),
		ToolChoice:  llm.ToolChoiceAuto,
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: llm.Temp(o.cfg.Temperature),
	})
	if err != nil {
		return o.fallback(ctx, &GenerationError{Phase: "first_call", Err: err})
	}

	if len(first.ToolCalls) == 0 {
		answer := strings.TrimSpace(first.Content)
		if answer == "" {
			return o.fallback(ctx, &GenerationError{Phase: "first_call", Err: errEmptyAnswer})
		}
		o.history.Append(Turn{User: message, Assistant: answer})
		slog.InfoContext(ctx, "turn answered directly",
			"duration_ms", time.Since(start).Milliseconds())
		return Response{Text: answer, Path: PathDirect}
	}

	messages = append(messages, llm.Message{
		Role:      llm.RoleAssistant,
		Content:   first.Content,
		ToolCalls: first.ToolCalls,
	})

	for _, call := range first.ToolCalls {
		slog.InfoContext(ctx, "model requested tool", "tool", call.Name)
		out, err := o.tools.Execute(ctx, call)
		if err != nil {
			return o.fallback(ctx, &GenerationError{Phase: "tool_dispatch", Err: err})
		}
		messages = append(messages, llm.Message{
			Role:       llm.RoleTool,
			Name:       call.Name,
			Content:    out,
			ToolCallID: call.ID,
		})
	}

	// Tools stay declared on the second call because the messages now hold
	// tool calls and results; ToolChoiceNone forbids another round.
	second, err := o.call(ctx, "companion.second_call", llm.AgentRequest{
		Messages:    messages,
		Tools:       o.tools.Definitions(),
		ToolChoice:  llm.ToolChoiceNone,
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: llm.Temp(o.cfg.Temperature),
	})
	if err != nil {
		return o.fallback(ctx, &GenerationError{Phase: "second_call", Err: err})
	}

	answer := strings.TrimSpace(second.Content)
	if answer == "" {
		return o.fallback(ctx, &GenerationError{Phase: "second_call", Err: errEmptyAnswer})
	}

	o.history.Append(Turn{User: message, Assistant: answer})
	slog.InfoContext(ctx, "turn answered with tools",
		"tool_calls", len(first.ToolCalls),
		"duration_ms", time.Since(start).Milliseconds())
	return Response{Text: answer, Path: PathTool, ToolCalls: len(first.ToolCalls)}
}

// RespondSimple produces a reply with a single call and no tools.
func (o *Orchestrator) RespondSimple(ctx context.Context, message string, snippets []knowledge.Snippet, tier safety.RiskTier) Response {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "companion.orchestrator"})
	if err := o.acquire(ctx); err != nil {
		return o.fallback(ctx, &GenerationError{Phase: "wait", Err: err})
	}
	defer o.release()

	resp, err := o.call(ctx, "companion.simple_call", llm.AgentRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: SimpleSystemPrompt},
			{Role: llm.RoleUser, Content: BuildSimplePrompt(message, snippets, tier, o.history.Recent(PromptTurns))},
		},
		MaxTokens:   o.cfg.SimpleMaxTokens,
		Temperature: llm.Temp(o.cfg.Temperature),
	})
	if err != nil {
		return o.fallback(ctx, &GenerationError{Phase: "simple_call", Err: err})
	}

	answer := strings.TrimSpace(resp.Content)
	if answer == "" {
		return o.fallback(ctx, &GenerationError{Phase: "simple_call", Err: errEmptyAnswer})
	}

	o.history.Append(Turn{User: message, Assistant: answer})
	return Response{Text: answer, Path: PathDirect}
}

// acquire waits for the running turn to finish or ctx to end.
func (o *Orchestrator) acquire(ctx context.Context) error {
	select {
	case o.turn <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		o.release()
		return err
	}
	return nil
}

func (o *Orchestrator) release() {
	<-o.turn
}

func (o *Orchestrator) call(ctx context.Context, span string, req llm.AgentRequest) (*llm.AgentResponse, error) {
	sc := logger.StartSpan(ctx, span)
	defer sc.End()

	resp, err := o.llm.ChatWithTools(sc.Context(), req)
	if err == nil && resp == nil {
		err = errors.New("no response from model")
	}
	if err != nil {
		sc.RecordError(err)
		return nil, err
	}

	sc.Span().SetAttributes(
		attribute.Int("llm.prompt_tokens", resp.PromptTokens),
		attribute.Int("llm.completion_tokens", resp.CompletionTokens),
		attribute.Int("llm.tool_calls", len(resp.ToolCalls)),
	)
	return resp, nil
}

func (o *Orchestrator) fallback(ctx context.Context, err *GenerationError) Response {
	slog.ErrorContext(ctx, "generation failed, using fallback reply",
		"phase", err.Phase,
		"error", err.Err)
	return Response{Text: FallbackMessage, Path: PathFallback, Err: err}
}
