package handlers

import (
	"net/http"

	"vastramitra/services/lifecycle"
	"vastramitra/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	coord *lifecycle.Coordinator
}

func NewNotificationHandler(coord *lifecycle.Coordinator) *NotificationHandler {
	return &NotificationHandler{coord: coord}
}

// ListNotifications returns the caller's inbox, newest first.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	items, err := h.coord.Inbox(c.Request.Context(), actor)
	reply(c, http.StatusOK, gin.H{"notifications": items}, err)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	if err := h.coord.MarkNotificationRead(c.Request.Context(), actor, c.Param("id")); err != nil {
		utils.CommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
