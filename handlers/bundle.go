package handlers

import (
	"net/http"

	"vastramitra/middleware"
	"vastramitra/models"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Appointment endpoints
	CreateAppointment     gin.HandlerFunc
	ListAppointments      gin.HandlerFunc
	GetAppointment        gin.HandlerFunc
	TransitionAppointment gin.HandlerFunc

	// Order endpoints
	ListOrders      gin.HandlerFunc
	GetOrder        gin.HandlerFunc
	TransitionOrder gin.HandlerFunc
	GetInvoice      gin.HandlerFunc

	// Payment endpoints
	SubmitPayment gin.HandlerFunc
	VerifyPayment gin.HandlerFunc
	ListPayments  gin.HandlerFunc

	// Task endpoints
	ListOrderTasks   gin.HandlerFunc
	ListAllTasks     gin.HandlerFunc
	AddTask          gin.HandlerFunc
	UpdateTaskStatus gin.HandlerFunc

	// Notification endpoints
	ListNotifications gin.HandlerFunc
	MarkRead          gin.HandlerFunc

	// Measurement book
	SaveMeasurements gin.HandlerFunc
	GetMeasurements  gin.HandlerFunc
	ListMeasurements gin.HandlerFunc

	// Device registration
	RegisterDevice gin.HandlerFunc

	// Live updates
	Watch gin.HandlerFunc

	Health gin.HandlerFunc
}

// NewHandlerBundle assembles the bundle from its handler groups.
func NewHandlerBundle(lh *LifecycleHandler, nh *NotificationHandler, mh *MeasurementHandler, dh *DeviceHandler, wh *WatchHandler) *HandlerBundle {
	return &HandlerBundle{
		CreateAppointment:     lh.CreateAppointment,
		ListAppointments:      lh.ListAppointments,
		GetAppointment:        lh.GetAppointment,
		TransitionAppointment: lh.TransitionAppointment,

		ListOrders:      lh.ListOrders,
		GetOrder:        lh.GetOrder,
		TransitionOrder: lh.TransitionOrder,
		GetInvoice:      lh.GetInvoice,

		SubmitPayment: lh.SubmitPayment,
		VerifyPayment: lh.VerifyPayment,
		ListPayments:  lh.ListPayments,

		ListOrderTasks:   lh.ListOrderTasks,
		ListAllTasks:     lh.ListAllTasks,
		AddTask:          lh.AddTask,
		UpdateTaskStatus: lh.UpdateTaskStatus,

		ListNotifications: nh.ListNotifications,
		MarkRead:          nh.MarkRead,

		SaveMeasurements: mh.SaveMeasurements,
		GetMeasurements:  mh.GetMeasurements,
		ListMeasurements: mh.ListMeasurements,

		RegisterDevice: dh.RegisterDevice,

		Watch: wh.Watch,

		Health: HealthHandler,
	}
}

// actorOrAbort returns the authenticated actor or answers 401.
func actorOrAbort(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	}
	return actor, ok
}
