package dto

import (
	"time"

	"mindsukoon.app/companion/internal/model"
)

type SafetyEventResponse struct {
	ID            int64     `json:"id,string"`
	SessionID     string    `json:"session_id"`
	TurnID        int64     `json:"turn_id,string,omitempty"`
	RiskTier      string    `json:"risk_tier"`
	MatchedPhrase string    `json:"matched_phrase,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
	RecordedAt    time.Time `json:"recorded_at"`
}

func ToSafetyEventResponse(e model.SafetyEvent) SafetyEventResponse {
	return SafetyEventResponse{
		ID:            e.ID,
		SessionID:     e.SessionID,
		TurnID:        e.TurnID,
		RiskTier:      e.RiskTier,
		MatchedPhrase: e.MatchedPhrase,
		OccurredAt:    e.OccurredAt,
		RecordedAt:    e.RecordedAt,
	}
}

func ToSafetyEventResponses(events []model.SafetyEvent) []SafetyEventResponse {
	out := make([]SafetyEventResponse, len(events))
	for i, e := range events {
		out[i] = ToSafetyEventResponse(e)
	}
	return out
}
