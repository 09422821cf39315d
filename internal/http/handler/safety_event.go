package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mindsukoon.app/companion/internal/http/dto"
	"mindsukoon.app/companion/internal/service"
	"mindsukoon.app/companion/internal/store"
)

type SafetyEventHandler struct {
	service service.SafetyEventService
}

func NewSafetyEventHandler(service service.SafetyEventService) *SafetyEventHandler {
	return &SafetyEventHandler{service: service}
}

func (h *SafetyEventHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	events, err := h.service.ListRecent(ctx, limit)
	if err != nil {
		if errors.Is(err, service.ErrAuditDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "safety audit is not configured"})
			return
		}
		slog.ErrorContext(ctx, "failed to list safety events", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list safety events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": dto.ToSafetyEventResponses(events)})
}

func (h *SafetyEventHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	event, err := h.service.Get(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuditDisabled):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "safety audit is not configured"})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "safety event not found"})
		default:
			slog.ErrorContext(ctx, "failed to get safety event", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get safety event"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToSafetyEventResponse(*event))
}
