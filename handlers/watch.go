package handlers

import (
	"io"
	"net/http"
	"time"

	"vastramitra/models"
	"vastramitra/services/lifecycle"
	"vastramitra/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const keepAliveEvery = 25 * time.Second

// WatchHandler streams document snapshots over server-sent events.
type WatchHandler struct {
	coord  *lifecycle.Coordinator
	logger *zap.Logger
}

func NewWatchHandler(coord *lifecycle.Coordinator, logger *zap.Logger) *WatchHandler {
	return &WatchHandler{coord: coord, logger: logger}
}

// refFor resolves a client-facing kind and id to the view the actor reads.
func refFor(actor models.Actor, kind, id string) (models.DocRef, bool) {
	customer := actor.Role == models.RoleCustomer
	switch kind {
	case "appointments":
		if customer {
			return models.CustomerAppointmentRef(actor.ID, id), true
		}
		return models.AppointmentRef(id), true
	case "orders":
		if customer {
			return models.CustomerOrderRef(actor.ID, id), true
		}
		return models.OrderRef(id), true
	case "tasks":
		return models.TaskStageRef(id), true
	case "notifications":
		return models.NotificationRef(actor.ID, id), true
	}
	return models.DocRef{}, false
}

// Watch sends the current snapshot of the document and one event per
// change until the client goes away.
func (h *WatchHandler) Watch(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	ref, ok := refFor(actor, c.Param("kind"), c.Param("id"))
	if !ok {
		utils.JSONError(c, http.StatusNotFound, "unknown document kind", c.Param("kind"))
		return
	}

	ctx := c.Request.Context()
	snaps, err := h.coord.Subscribe(ctx, actor, ref)
	if err != nil {
		utils.CommandError(c, err)
		return
	}
	h.logger.Debug("Watch opened", zap.String("actorId", actor.ID), zap.String("ref", ref.Path()))

	keepAlive := time.NewTicker(keepAliveEvery)
	defer keepAlive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case snap, ok := <-snaps:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", snap)
			return true
		case <-keepAlive.C:
			c.SSEvent("ping", gin.H{"at": time.Now()})
			return true
		case <-ctx.Done():
			return false
		}
	})
	h.logger.Debug("Watch closed", zap.String("actorId", actor.ID), zap.String("ref", ref.Path()))
}
