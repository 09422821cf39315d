package model

import "time"

// ChatReply is one assistant answer as returned to API and CLI callers.
type ChatReply struct {
	CreatedAt time.Time `json:"created_at"`
	SessionID string    `json:"session_id"`
	Reply     string    `json:"reply"`
	RiskLevel string    `json:"risk_level"`
	Path      string    `json:"path"`
	TurnID    int64     `json:"turn_id"`
}

// Session is an anonymous conversation held in memory by the server.
type Session struct {
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
	ID         string    `json:"id"`
	Turns      int       `json:"turns"`
}
