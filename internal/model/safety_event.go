package model

import "time"

// SafetyEvent is the audit record of an elevated-risk turn. The user's
// message text is never stored.
type SafetyEvent struct {
	OccurredAt    time.Time `json:"occurred_at"`
	RecordedAt    time.Time `json:"recorded_at"`
	SessionID     string    `json:"session_id"`
	RiskTier      string    `json:"risk_tier"`
	MatchedPhrase string    `json:"matched_phrase,omitempty"`
	ID            int64     `json:"id"`
	TurnID        int64     `json:"turn_id,omitempty"`
}
