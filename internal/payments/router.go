package payments

import (
	"triptrek/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupPaymentRoutes configures checkout routes
func SetupPaymentRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	bookings := rg.Group("/bookings")
	bookings.Use(auth, middleware.RequireRoles("USER", "ADMIN"))
	{
		bookings.POST("/:id/payment", controller.OpenOrder) // POST /api/v1/bookings/:id/payment
	}

	// The signature authenticates the callback, no session needed
	payments := rg.Group("/payments")
	{
		payments.POST("/verify", controller.VerifyPayment) // POST /api/v1/payments/verify
	}
}
