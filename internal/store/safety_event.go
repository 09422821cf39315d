package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"mindsukoon.app/companion/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SafetyEventStore defines the contract for safety audit records
type SafetyEventStore interface {
	// Create inserts the event. It reports false when an event with the same
	// ID already exists, which makes redelivered stream messages harmless.
	Create(ctx context.Context, event *model.SafetyEvent) (bool, error)
	GetByID(ctx context.Context, id int64) (*model.SafetyEvent, error)
	ListRecent(ctx context.Context, limit int) ([]model.SafetyEvent, error)
}

type safetyEventStore struct {
	db DBTX
}

func NewSafetyEventStore(db DBTX) SafetyEventStore {
	return &safetyEventStore{db: db}
}

const createSafetyEvent = `
INSERT INTO safety_events (id, session_id, turn_id, risk_tier, matched_phrase, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING
RETURNING recorded_at`

func (s *safetyEventStore) Create(ctx context.Context, event *model.SafetyEvent) (bool, error) {
	err := s.db.QueryRow(ctx, createSafetyEvent,
		event.ID,
		event.SessionID,
		event.TurnID,
		event.RiskTier,
		event.MatchedPhrase,
		event.OccurredAt,
	).Scan(&event.RecordedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("inserting safety event: %w", err)
	}
	return true, nil
}

const getSafetyEvent = `
SELECT id, session_id, turn_id, risk_tier, matched_phrase, occurred_at, recorded_at
FROM safety_events
WHERE id = $1`

func (s *safetyEventStore) GetByID(ctx context.Context, id int64) (*model.SafetyEvent, error) {
	var e model.SafetyEvent
	err := s.db.QueryRow(ctx, getSafetyEvent, id).Scan(
		&e.ID, &e.SessionID, &e.TurnID, &e.RiskTier, &e.MatchedPhrase, &e.OccurredAt, &e.RecordedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

const listRecentSafetyEvents = `
SELECT id, session_id, turn_id, risk_tier, matched_phrase, occurred_at, recorded_at
FROM safety_events
ORDER BY occurred_at DESC, id DESC
LIMIT $1`

func (s *safetyEventStore) ListRecent(ctx context.Context, limit int) ([]model.SafetyEvent, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)

	rows, err := s.db.Query(ctx, listRecentSafetyEvents, limit)
	if err != nil {
		return nil, fmt.Errorf("listing safety events: %w", err)
	}
	defer rows.Close()

	result := make([]model.SafetyEvent, 0, limit)
	for rows.Next() {
		var e model.SafetyEvent
		if err := rows.Scan(&e.ID, &e.SessionID, &e.TurnID, &e.RiskTier, &e.MatchedPhrase, &e.OccurredAt, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning safety event: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
