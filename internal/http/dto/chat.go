package dto

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"mindsukoon.app/companion/internal/companion"
	"mindsukoon.app/companion/internal/model"
)

const MaxMessageLength = 4000

type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

func (r *ChatRequest) Normalize() {
	r.SessionID = strings.TrimSpace(r.SessionID)
	r.Message = strings.TrimSpace(r.Message)
}

func (r ChatRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SessionID, is.UUID),
		validation.Field(&r.Message,
			validation.Required.Error("message is required"),
			validation.RuneLength(1, MaxMessageLength),
		),
	)
}

type ChatResponse struct {
	SessionID string    `json:"session_id"`
	TurnID    int64     `json:"turn_id,string"`
	Reply     string    `json:"reply"`
	RiskLevel string    `json:"risk_level"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

func ToChatResponse(r *model.ChatReply) ChatResponse {
	return ChatResponse{
		SessionID: r.SessionID,
		TurnID:    r.TurnID,
		Reply:     r.Reply,
		RiskLevel: r.RiskLevel,
		Path:      r.Path,
		CreatedAt: r.CreatedAt,
	}
}

type SessionResponse struct {
	SessionID string    `json:"session_id"`
	Welcome   string    `json:"welcome"`
	CreatedAt time.Time `json:"created_at"`
}

type TurnResponse struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

type HistoryResponse struct {
	SessionID string         `json:"session_id"`
	Turns     []TurnResponse `json:"turns"`
}

func ToHistoryResponse(sessionID string, turns []companion.Turn) HistoryResponse {
	out := make([]TurnResponse, len(turns))
	for i, t := range turns {
		out[i] = TurnResponse{User: t.User, Assistant: t.Assistant}
	}
	return HistoryResponse{SessionID: sessionID, Turns: out}
}
