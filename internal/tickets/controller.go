package tickets

import (
	"errors"
	"net/http"

	"triptrek/internal/bookings"
	"triptrek/internal/shared/middleware"
	"triptrek/internal/shared/utils/response"
	"triptrek/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	bookings bookings.Service
	issuer   *Issuer
	log      *logger.Logger
}

func NewController(bookingService bookings.Service, issuer *Issuer, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Controller{bookings: bookingService, issuer: issuer, log: log}
}

// DownloadTicket godoc
// @Summary Download the PDF ticket of a paid booking
// @Tags tickets
// @Produce application/pdf
// @Param id path string true "Booking ID"
// @Success 200 {file} file
// @Failure 403 {object} response.StandardApiResponse
// @Failure 404 {object} response.StandardApiResponse
// @Router /bookings/{id}/ticket [get]
func (c *Controller) DownloadTicket(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return
	}

	booking, err := c.bookings.GetUserBooking(ctx.Request.Context(), userID, bookingID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	pdf, filename, err := c.issuer.EnsurePDF(ctx.Request.Context(), booking)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.RespondAttachment(ctx, filename, "application/pdf", pdf)
}

func (c *Controller) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, bookings.ErrBookingNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Booking not found", nil, nil)
	case errors.Is(err, bookings.ErrPaymentIncomplete):
		response.RespondJSON(ctx, "error", http.StatusForbidden, "Ticket not available. Payment incomplete.", nil, nil)
	default:
		c.log.LogHTTPError(ctx, err, http.StatusInternalServerError)
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Could not generate ticket", nil, nil)
	}
}
