package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"urbancabz/internal/http/handlers"
	"urbancabz/internal/http/middleware"
	"urbancabz/internal/services"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Booking *handlers.BookingHandler
	Payment *handlers.PaymentHandler
	Admin   *handlers.AdminHandler
	Fleet   *handlers.FleetHandler
	System  *handlers.SystemHandler
}

func NewRouter(authSvc *services.AuthService, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	_ = r.SetTrustedProxies(nil)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.System.Health)
		api.GET("/db-check", h.System.DBCheck)

		auth := api.Group("/auth")
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/forgot-password", h.Auth.ForgotPassword)
		auth.POST("/reset-password", h.Auth.ResetPassword)

		// Public vehicle catalog.
		api.GET("/fleet", h.Fleet.List)
		api.GET("/fleet/:id", h.Fleet.Get)

		authed := api.Group("", middleware.Auth(authSvc))
		{
			authed.GET("/auth/profile", h.Auth.Profile)
			authed.PUT("/auth/profile", h.Auth.UpdateProfile)

			bookings := authed.Group("/bookings")
			bookings.POST("", h.Booking.Create)
			bookings.GET("/my", h.Booking.MyBookings)
			bookings.GET("/:id", h.Booking.Get)
			bookings.GET("/:id/ticket", h.Booking.Ticket)
			bookings.GET("/:id/invoice", h.Booking.Invoice)

			payments := authed.Group("/payments")
			payments.POST("/order", h.Payment.CreateOrder)
			payments.POST("/verify", h.Payment.Verify)
		}

		admin := api.Group("/admin", middleware.Auth(authSvc), middleware.AdminOnly())
		{
			adminBookings := admin.Group("/bookings")
			adminBookings.GET("", h.Admin.ListBookings)
			adminBookings.GET("/pending-payments", h.Admin.ListPendingPayments)
			adminBookings.GET("/:id", h.Admin.GetBooking)
			adminBookings.PATCH("/:id/status", h.Admin.UpdateStatus)
			adminBookings.POST("/:id/complete", h.Admin.CompleteTrip)
			adminBookings.POST("/:id/cancel", h.Admin.CancelBooking)
			adminBookings.POST("/:id/assign-taxi", h.Admin.AssignTaxi)
			adminBookings.POST("/:id/notes", h.Admin.AddNote)
			adminBookings.GET("/:id/notes", h.Admin.ListNotes)
			adminBookings.GET("/:id/audit-logs", h.Admin.ListAuditLogs)
			adminBookings.GET("/:id/fare-adjustments", h.Admin.ListFareAdjustments)

			fleet := admin.Group("/fleet")
			fleet.GET("", h.Fleet.List)
			fleet.POST("", h.Fleet.Create)
			fleet.GET("/:id", h.Fleet.Get)
			fleet.PATCH("/:id", h.Fleet.Update)
			fleet.DELETE("/:id", h.Fleet.Deactivate)

			admin.DELETE("/maintenance/bookings", h.Admin.PurgeBookings)
		}
	}

	return r
}
