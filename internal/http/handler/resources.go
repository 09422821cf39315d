package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mindsukoon.app/companion/internal/http/dto"
	"mindsukoon.app/companion/internal/safety"
)

func Resources(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToResourcesResponse(safety.EmergencyContacts()))
}
