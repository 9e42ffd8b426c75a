package tickets

import (
	"triptrek/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupTicketRoutes configures ticket download routes
func SetupTicketRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	bookings := rg.Group("/bookings")
	bookings.Use(auth, middleware.RequireRoles("USER", "ADMIN"))
	{
		bookings.GET("/:id/ticket", controller.DownloadTicket) // GET /api/v1/bookings/:id/ticket
	}
}
