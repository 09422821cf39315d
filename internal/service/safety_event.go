package service

import (
	"context"
	"errors"
	"fmt"

	"mindsukoon.app/companion/internal/model"
	"mindsukoon.app/companion/internal/store"
)

// ErrAuditDisabled is returned when no database is configured.
var ErrAuditDisabled = errors.New("safety audit store is not configured")

type SafetyEventService interface {
	ListRecent(ctx context.Context, limit int) ([]model.SafetyEvent, error)
	Get(ctx context.Context, id int64) (*model.SafetyEvent, error)
}

type safetyEventService struct {
	events store.SafetyEventStore
}

// NewSafetyEventService accepts a nil store; every call then reports
// ErrAuditDisabled.
func NewSafetyEventService(events store.SafetyEventStore) SafetyEventService {
	return &safetyEventService{events: events}
}

func (s *safetyEventService) ListRecent(ctx context.Context, limit int) ([]model.SafetyEvent, error) {
	if s.events == nil {
		return nil, ErrAuditDisabled
	}
	events, err := s.events.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing safety events: %w", err)
	}
	return events, nil
}

func (s *safetyEventService) Get(ctx context.Context, id int64) (*model.SafetyEvent, error) {
	if s.events == nil {
		return nil, ErrAuditDisabled
	}
	return s.events.GetByID(ctx, id)
}
