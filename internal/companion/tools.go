package companion

import (
	"context"
	"fmt"
	"log/slog"

	"mindsukoon.app/companion/common/llm"
)

// ToolHandler is one model-callable tool with a fixed schema.
type ToolHandler interface {
	Definition() llm.Tool
	// Execute returns the tool-result content for the model. An error means
	// the arguments could not be used; failures of the underlying service are
	// reported as content instead.
	Execute(ctx context.Context, arguments string) (string, error)
}

// ToolRegistry dispatches tool calls by name.
type ToolRegistry struct {
	handlers map[string]ToolHandler
	order    []string
}

func NewToolRegistry(handlers ...ToolHandler) *ToolRegistry {
	r := &ToolRegistry{handlers: make(map[string]ToolHandler)}
	for _, h := range handlers {
		r.Register(h)
	}
	return r
}

// Register adds h, replacing any handler with the same name.
func (r *ToolRegistry) Register(h ToolHandler) {
	name := h.Definition().Name
	if _, exists := r.handlers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.handlers[name] = h
}

// Definitions returns the tool schemas in registration order.
func (r *ToolRegistry) Definitions() []llm.Tool {
	defs := make([]llm.Tool, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.handlers[name].Definition())
	}
	return defs
}

// Execute runs the handler for call. Unknown tools produce an "unavailable"
// result so the model can still answer.
func (r *ToolRegistry) Execute(ctx context.Context, call llm.ToolCall) (string, error) {
	h, ok := r.handlers[call.Name]
	if !ok {
		slog.WarnContext(ctx, "model requested unknown tool", "tool", call.Name)
		return fmt.Sprintf("Tool %q is not available. Please provide a response based on your existing knowledge.", call.Name), nil
	}
	return h.Execute(ctx, call.Arguments)
}
