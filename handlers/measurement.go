package handlers

import (
	"net/http"

	"vastramitra/models"
	"vastramitra/services/lifecycle"

	"github.com/gin-gonic/gin"
)

// MeasurementHandler serves the customer measurement book.
type MeasurementHandler struct {
	coord *lifecycle.Coordinator
}

func NewMeasurementHandler(coord *lifecycle.Coordinator) *MeasurementHandler {
	return &MeasurementHandler{coord: coord}
}

func (h *MeasurementHandler) SaveMeasurements(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var in models.MeasurementInput
	if !bindJSON(c, &in) {
		return
	}
	book, err := h.coord.SaveMeasurements(c.Request.Context(), actor, in)
	reply(c, http.StatusOK, book, err)
}

// GetMeasurements answers the caller's own book on /measurements/me.
func (h *MeasurementHandler) GetMeasurements(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	customerID := c.Param("customerId")
	if customerID == "me" {
		customerID = actor.ID
	}
	book, err := h.coord.GetMeasurements(c.Request.Context(), actor, customerID)
	reply(c, http.StatusOK, book, err)
}

func (h *MeasurementHandler) ListMeasurements(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	books, err := h.coord.ListMeasurements(c.Request.Context(), actor)
	reply(c, http.StatusOK, gin.H{"measurements": books}, err)
}
