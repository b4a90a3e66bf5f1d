package handlers

import (
	"net/http"

	"vastramitra/utils"

	"github.com/gin-gonic/gin"
)

func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"message":      "Hi, I'm VastraMitra",
		"dependencies": utils.GetHealthStatus(),
	})
}
