package bookings

import (
	"triptrek/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	packages := rg.Group("/packages")
	packages.Use(auth, middleware.RequireRoles("USER", "ADMIN"))
	{
		packages.POST("/:id/bookings", controller.CreateBooking) // POST /api/v1/packages/:id/bookings
	}

	bookings := rg.Group("/bookings")
	bookings.Use(auth, middleware.RequireRoles("USER", "ADMIN"))
	{
		bookings.GET("", controller.GetUserBookings) // GET /api/v1/bookings?page=1&limit=10&status=CONFIRMED
		bookings.GET("/:id", controller.GetBooking)  // GET /api/v1/bookings/:id
	}
}

// Booking flow:
// 1. POST /packages/:id/bookings        - PENDING booking, slots reserved
// 2. POST /bookings/:id/payment         - open a gateway order (payments)
// 3. POST /payments/verify              - signed callback, booking CONFIRMED, ticket emailed
// 4. GET  /bookings/:id/ticket          - download the PDF (tickets)
