package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"mindsukoon.app/companion/common/logger"
	"mindsukoon.app/companion/internal/companion"
	"mindsukoon.app/companion/internal/model"
)

var ErrEmptyMessage = errors.New("message is empty")

type ChatService interface {
	StartSession(ctx context.Context) (model.Session, string)
	// Chat answers message in the given session. An empty sessionID starts a
	// new session.
	Chat(ctx context.Context, sessionID, message string) (*model.ChatReply, error)
	History(ctx context.Context, sessionID string) ([]companion.Turn, error)
	EndSession(ctx context.Context, sessionID string) error
}

type chatService struct {
	sessions    *SessionRegistry
	turnTimeout time.Duration
}

func NewChatService(sessions *SessionRegistry, turnTimeout time.Duration) ChatService {
	return &chatService{
		sessions:    sessions,
		turnTimeout: turnTimeout,
	}
}

func (s *chatService) StartSession(ctx context.Context) (model.Session, string) {
	sess := s.sessions.Create()
	slog.InfoContext(ctx, "session started", "session_id", sess.ID)
	return sess, companion.WelcomeMessage
}

func (s *chatService) Chat(ctx context.Context, sessionID, message string) (*model.ChatReply, error) {
	if message == "" {
		return nil, ErrEmptyMessage
	}

	if sessionID == "" {
		sess, _ := s.StartSession(ctx)
		sessionID = sess.ID
	}

	assistant, err := s.sessions.Acquire(sessionID)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SessionID: &sessionID,
		Component: "companion.service.chat",
	})

	if s.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.turnTimeout)
		defer cancel()
	}

	start := time.Now()
	reply := assistant.Handle(ctx, message)

	slog.InfoContext(ctx, "chat turn completed",
		"turn_id", reply.TurnID,
		"path", reply.Path,
		"risk_tier", reply.Tier.String(),
		"duration_ms", time.Since(start).Milliseconds())

	return &model.ChatReply{
		SessionID: sessionID,
		TurnID:    reply.TurnID,
		Reply:     reply.Text,
		RiskLevel: reply.Tier.String(),
		Path:      string(reply.Path),
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (s *chatService) History(_ context.Context, sessionID string) ([]companion.Turn, error) {
	assistant, err := s.sessions.Lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return assistant.History(), nil
}

func (s *chatService) EndSession(ctx context.Context, sessionID string) error {
	if !s.sessions.Delete(sessionID) {
		return ErrSessionNotFound
	}
	slog.InfoContext(ctx, "session ended", "session_id", sessionID)
	return nil
}
