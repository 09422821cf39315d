package companion

import (
	"context"
	"log/slog"
	"time"

	"mindsukoon.app/companion/common/id"
	"mindsukoon.app/companion/common/logger"
	"mindsukoon.app/companion/internal/knowledge"
	"mindsukoon.app/companion/internal/safety"
)

// RiskEvent describes an elevated-risk turn. It carries the matched phrase but
// never the message text.
type RiskEvent struct {
	SessionID  string
	TurnID     int64
	Tier       safety.RiskTier
	Phrase     string
	OccurredAt time.Time
}

// RiskObserver is notified of every elevated-risk turn. Implementations must
// not block the reply and must absorb their own failures.
type RiskObserver interface {
	ObserveRisk(ctx context.Context, event RiskEvent)
}

type AssistantConfig struct {
	// ToolsEnabled selects Respond over RespondSimple.
	ToolsEnabled     bool
	KnowledgeResults int
}

// Reply is what the user sees for one message.
type Reply struct {
	TurnID int64
	Text   string
	Tier   safety.RiskTier
	Path   Path
}

// Assistant handles one conversation: crisis screening first, then
// knowledge retrieval and generation.
type Assistant struct {
	sessionID    string
	retriever    knowledge.Retriever
	orchestrator *Orchestrator
	observer     RiskObserver
	cfg          AssistantConfig
}

func NewAssistant(sessionID string, retriever knowledge.Retriever, orchestrator *Orchestrator, observer RiskObserver, cfg AssistantConfig) *Assistant {
	if cfg.KnowledgeResults <= 0 {
		cfg.KnowledgeResults = knowledge.DefaultResults
	}
	return &Assistant{
		sessionID:    sessionID,
		retriever:    retriever,
		orchestrator: orchestrator,
		observer:     observer,
		cfg:          cfg,
	}
}

func (a *Assistant) SessionID() string {
	return a.sessionID
}

// History returns the conversation's completed turns.
func (a *Assistant) History() []Turn {
	return a.orchestrator.History()
}

// Handle answers message. Elevated-risk messages get the fixed crisis reply
// without any model call and are not added to history.
func (a *Assistant) Handle(ctx context.Context, message string) Reply {
	turnID := id.New()
	tier, phrase := safety.Match(message)

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SessionID: logger.Ptr(a.sessionID),
		TurnID:    logger.Ptr(turnID),
		RiskTier:  logger.Ptr(tier.String()),
		Component: "companion.assistant",
	})

	if text, ok := safety.CrisisResponse(tier); ok {
		slog.WarnContext(ctx, "elevated risk detected, returning crisis resources")
		if a.observer != nil {
			a.observer.ObserveRisk(ctx, RiskEvent{
				SessionID:  a.sessionID,
				TurnID:     turnID,
				Tier:       tier,
				Phrase:     phrase,
				OccurredAt: time.Now().UTC(),
			})
		}
		return Reply{TurnID: turnID, Text: text, Tier: tier, Path: PathCrisis}
	}

	snippets := a.retrieve(ctx, message)
	slog.DebugContext(ctx, "knowledge retrieved", "snippets", len(snippets))

	var resp Response
	if a.cfg.ToolsEnabled {
		resp = a.orchestrator.Respond(ctx, message, snippets, tier)
	} else {
		resp = a.orchestrator.RespondSimple(ctx, message, snippets, tier)
	}

	return Reply{TurnID: turnID, Text: resp.Text, Tier: tier, Path: resp.Path}
}

// retrieve treats a panicking retriever as one that found nothing.
func (a *Assistant) retrieve(ctx context.Context, message string) (snippets []knowledge.Snippet) {
	if a.retriever == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "knowledge retrieval panicked", "panic", r)
			snippets = nil
		}
	}()
	return a.retriever.Retrieve(ctx, message, a.cfg.KnowledgeResults)
}
