package router

import (
	"github.com/gin-gonic/gin"

	"mindsukoon.app/companion/internal/http/handler"
)

func AdminRouter(rg *gin.RouterGroup, h *handler.SafetyEventHandler) {
	rg.GET("/safety-events", h.List)
	rg.GET("/safety-events/:id", h.Get)
}
