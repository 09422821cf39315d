package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mindsukoon.app/companion/internal/http/handler"
	"mindsukoon.app/companion/internal/http/middleware"
	"mindsukoon.app/companion/internal/service"
)

type Services struct {
	Chat         service.ChatService
	SafetyEvents service.SafetyEventService
}

type RouterConfig struct {
	AdminAPIKey string
}

func SetupRoutes(router *gin.Engine, services Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		chatHandler := handler.NewChatHandler(services.Chat)
		ChatRouter(v1, chatHandler)

		v1.GET("/resources", handler.Resources)

		safetyHandler := handler.NewSafetyEventHandler(services.SafetyEvents)
		AdminRouter(v1.Group("/admin", middleware.RequireAdminKey(cfg.AdminAPIKey)), safetyHandler)
	}
}
