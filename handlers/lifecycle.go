package handlers

import (
	"net/http"

	"vastramitra/models"
	"vastramitra/services/lifecycle"
	"vastramitra/utils"

	"github.com/gin-gonic/gin"
)

// LifecycleHandler exposes the booking lifecycle commands.
type LifecycleHandler struct {
	coord *lifecycle.Coordinator
}

func NewLifecycleHandler(coord *lifecycle.Coordinator) *LifecycleHandler {
	return &LifecycleHandler{coord: coord}
}

type statusInput struct {
	Status string `json:"status" binding:"required"`
}

type paymentInput struct {
	Kind           models.PaymentKind `json:"kind" binding:"required"`
	TransactionRef string             `json:"transactionRef" binding:"required"`
}

type taskInput struct {
	Title string `json:"title" binding:"required"`
}

func bindJSON(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		c.Abort()
		return false
	}
	return true
}

// reply answers with res or maps err onto a status.
func reply(c *gin.Context, status int, res any, err error) {
	if err != nil {
		utils.CommandError(c, err)
		return
	}
	c.JSON(status, res)
}

func (h *LifecycleHandler) CreateAppointment(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var draft models.AppointmentDraft
	if !bindJSON(c, &draft) {
		return
	}
	res, err := h.coord.CreateAppointment(c.Request.Context(), actor, draft)
	reply(c, http.StatusCreated, res, err)
}

func (h *LifecycleHandler) ListAppointments(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	items, err := h.coord.ListAppointments(c.Request.Context(), actor)
	reply(c, http.StatusOK, gin.H{"appointments": items}, err)
}

func (h *LifecycleHandler) GetAppointment(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	appt, err := h.coord.GetAppointment(c.Request.Context(), actor, c.Param("id"))
	reply(c, http.StatusOK, appt, err)
}

func (h *LifecycleHandler) TransitionAppointment(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var in statusInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.coord.TransitionAppointment(c.Request.Context(), actor, c.Param("id"), models.AppointmentStatus(in.Status))
	reply(c, http.StatusOK, res, err)
}

func (h *LifecycleHandler) ListOrders(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	items, err := h.coord.ListOrders(c.Request.Context(), actor)
	reply(c, http.StatusOK, gin.H{"orders": items}, err)
}

func (h *LifecycleHandler) GetOrder(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	order, err := h.coord.GetOrder(c.Request.Context(), actor, c.Param("id"))
	reply(c, http.StatusOK, order, err)
}

// GetInvoice returns the invoice of a fully paid order.
func (h *LifecycleHandler) GetInvoice(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	inv, err := h.coord.GetInvoice(c.Request.Context(), actor, c.Param("id"))
	reply(c, http.StatusOK, inv, err)
}

func (h *LifecycleHandler) TransitionOrder(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var in statusInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.coord.TransitionOrder(c.Request.Context(), actor, c.Param("id"), models.OrderStatus(in.Status))
	reply(c, http.StatusOK, res, err)
}

func (h *LifecycleHandler) SubmitPayment(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var in paymentInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.coord.SubmitPayment(c.Request.Context(), actor, c.Param("id"), in.Kind, in.TransactionRef)
	reply(c, http.StatusCreated, res, err)
}

func (h *LifecycleHandler) VerifyPayment(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	res, err := h.coord.VerifyPayment(c.Request.Context(), actor, c.Param("id"))
	reply(c, http.StatusOK, res, err)
}

func (h *LifecycleHandler) ListPayments(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	items, err := h.coord.ListPayments(c.Request.Context(), actor, models.PaymentRecordStatus(c.Query("status")))
	reply(c, http.StatusOK, gin.H{"payments": items}, err)
}

func (h *LifecycleHandler) ListOrderTasks(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	items, err := h.coord.ListTasks(c.Request.Context(), actor, c.Param("id"))
	reply(c, http.StatusOK, gin.H{"tasks": items}, err)
}

func (h *LifecycleHandler) ListAllTasks(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	items, err := h.coord.ListTasks(c.Request.Context(), actor, "")
	reply(c, http.StatusOK, gin.H{"tasks": items}, err)
}

func (h *LifecycleHandler) AddTask(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var in taskInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.coord.AddTask(c.Request.Context(), actor, c.Param("id"), in.Title)
	reply(c, http.StatusCreated, res, err)
}

func (h *LifecycleHandler) UpdateTaskStatus(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var in statusInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.coord.UpdateTaskStatus(c.Request.Context(), actor, c.Param("id"), models.TaskStatus(in.Status))
	reply(c, http.StatusOK, res, err)
}
