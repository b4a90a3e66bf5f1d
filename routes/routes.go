package routes

import (
	"time"

	"vastramitra/handlers"
	"vastramitra/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAppointmentRoutes registers appointment endpoints.
func RegisterAppointmentRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	g := api.Group("/appointments")
	{
		g.POST("", hb.CreateAppointment)
		g.GET("", hb.ListAppointments)
		g.GET("/:id", hb.GetAppointment)
		g.PATCH("/:id/status", hb.TransitionAppointment)
	}
}

// RegisterOrderRoutes registers order, payment submission and task endpoints
// keyed by booking id.
func RegisterOrderRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	g := api.Group("/orders")
	{
		g.GET("", hb.ListOrders)
		g.GET("/:id", hb.GetOrder)
		g.PATCH("/:id/status", hb.TransitionOrder)
		g.GET("/:id/invoice", hb.GetInvoice)
		g.POST("/:id/payments", hb.SubmitPayment)
		g.GET("/:id/tasks", hb.ListOrderTasks)
		g.POST("/:id/tasks", hb.AddTask)
	}
}

// RegisterPaymentRoutes registers payment review endpoints.
func RegisterPaymentRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	g := api.Group("/payments")
	{
		g.GET("", hb.ListPayments)
		g.POST("/:id/verify", hb.VerifyPayment)
	}
}

// RegisterTaskRoutes registers task endpoints.
func RegisterTaskRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	g := api.Group("/tasks")
	{
		g.GET("", hb.ListAllTasks)
		g.PATCH("/:id/status", hb.UpdateTaskStatus)
	}
}

// RegisterMeasurementRoutes registers the measurement book. Customers read
// their own book at /measurements/me.
func RegisterMeasurementRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	g := api.Group("/measurements")
	{
		g.GET("", hb.ListMeasurements)
		g.PUT("", hb.SaveMeasurements)
		g.GET("/:customerId", hb.GetMeasurements)
	}
}

// RegisterNotificationRoutes registers inbox, device and live-update endpoints.
func RegisterNotificationRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api.GET("/notifications", hb.ListNotifications)
	api.POST("/notifications/:id/read", hb.MarkRead)
	api.PUT("/devices", hb.RegisterDevice)
	api.GET("/watch/:kind/:id", hb.Watch)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)

	api := r.Group("/api")
	api.Use(middleware.ActorAuth())
	RegisterAppointmentRoutes(api, hb)
	RegisterOrderRoutes(api, hb)
	RegisterPaymentRoutes(api, hb)
	RegisterTaskRoutes(api, hb)
	RegisterMeasurementRoutes(api, hb)
	RegisterNotificationRoutes(api, hb)
}
