package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"mindsukoon.app/companion/internal/http/dto"
	"mindsukoon.app/companion/internal/service"
)

type ChatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) CreateSession(c *gin.Context) {
	sess, welcome := h.chatService.StartSession(c.Request.Context())
	c.JSON(http.StatusCreated, dto.SessionResponse{
		SessionID: sess.ID,
		Welcome:   welcome,
		CreatedAt: sess.CreatedAt,
	})
}

func (h *ChatHandler) Chat(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid chat request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.chatService.Chat(ctx, req.SessionID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, service.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		default:
			slog.ErrorContext(ctx, "chat failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process message"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToChatResponse(reply))
}

func (h *ChatHandler) History(c *gin.Context) {
	sessionID := c.Param("id")
	turns, err := h.chatService.History(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, dto.ToHistoryResponse(sessionID, turns))
}

func (h *ChatHandler) EndSession(c *gin.Context) {
	if err := h.chatService.EndSession(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to end session"})
		return
	}
	c.Status(http.StatusNoContent)
}
