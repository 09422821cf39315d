package router

import (
	"github.com/gin-gonic/gin"

	"mindsukoon.app/companion/internal/http/handler"
)

func ChatRouter(rg *gin.RouterGroup, h *handler.ChatHandler) {
	rg.POST("/chat", h.Chat)

	sessions := rg.Group("/sessions")
	sessions.POST("", h.CreateSession)
	sessions.GET("/:id/history", h.History)
	sessions.DELETE("/:id", h.EndSession)
}
