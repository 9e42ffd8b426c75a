package payments

import (
	"errors"
	"net/http"

	"triptrek/internal/bookings"
	"triptrek/internal/shared/middleware"
	"triptrek/internal/shared/utils/response"
	"triptrek/internal/tickets"
	"triptrek/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service     Service
	log         *logger.Logger
	bookingsURL string
}

// NewController builds the payment handlers. bookingsURL is the redirect hint
// returned when a booking is already paid.
func NewController(service Service, bookingsURL string, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Controller{service: service, log: log, bookingsURL: bookingsURL}
}

// OpenOrder godoc
// @Summary Open a payment gateway order for a pending booking
// @Tags payments
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.StandardApiResponse{data=RemoteOrder}
// @Failure 409 {object} response.StandardApiResponse
// @Failure 502 {object} response.StandardApiResponse
// @Router /bookings/{id}/payment [post]
func (c *Controller) OpenOrder(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return
	}

	order, err := c.service.OpenOrder(ctx.Request.Context(), userID, bookingID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment order created", order, nil)
}

// VerifyPayment godoc
// @Summary Verify a checkout callback and confirm the booking
// @Tags payments
// @Accept json
// @Produce json
// @Param request body VerifyPaymentRequest true "Gateway callback fields"
// @Success 200 {object} response.StandardApiResponse{data=bookings.BookingResponse}
// @Failure 400 {object} response.StandardApiResponse
// @Failure 404 {object} response.StandardApiResponse
// @Router /payments/verify [post]
func (c *Controller) VerifyPayment(ctx *gin.Context) {
	var req VerifyPaymentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	reqCtx := WithClientIP(ctx.Request.Context(), ctx.ClientIP())
	booking, err := c.service.VerifyCallback(reqCtx, req.OrderID, req.PaymentID, req.Signature)
	if err != nil && booking == nil {
		c.respondError(ctx, err)
		return
	}
	if err != nil {
		c.log.LogHTTPError(ctx, err, http.StatusOK)
		response.RespondJSON(ctx, "success", http.StatusOK, ticketFailureMessage(err),
			bookings.ToBookingResponse(booking), nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment successful. Ticket sent to your email.",
		bookings.ToBookingResponse(booking), nil)
}

func (c *Controller) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, bookings.ErrBookingNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Booking not found", nil, nil)
	case errors.Is(err, bookings.ErrAlreadyPaid):
		response.RespondJSON(ctx, "error", http.StatusConflict, "This booking is already paid",
			gin.H{"redirect": c.bookingsURL}, nil)
	case errors.Is(err, bookings.ErrNotPending), errors.Is(err, bookings.ErrBookingCancelled):
		response.RespondJSON(ctx, "error", http.StatusConflict, "This booking can no longer be paid", nil, nil)
	case errors.Is(err, ErrOrderInProgress):
		response.RespondJSON(ctx, "error", http.StatusConflict, err.Error(), nil, nil)
	case errors.Is(err, ErrGateway):
		c.log.LogHTTPError(ctx, err, http.StatusBadGateway)
		response.RespondJSON(ctx, "error", http.StatusBadGateway, "Payment gateway unavailable, please retry", nil, nil)
	case errors.Is(err, ErrInvalidSignature):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Payment verification failed", nil, nil)
	case errors.Is(err, ErrUnknownOrder):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Payment order not found", nil, nil)
	default:
		c.log.LogHTTPError(ctx, err, http.StatusInternalServerError)
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Something went wrong", nil, nil)
	}
}

// ticketFailureMessage describes a confirmed payment whose ticket step failed
func ticketFailureMessage(err error) string {
	switch {
	case errors.Is(err, tickets.ErrDeliveryFailed):
		return "Payment successful. Your ticket could not be emailed, download it from your bookings."
	case errors.Is(err, tickets.ErrRenderingFailed):
		return "Payment successful. Your ticket could not be generated yet, download it from your bookings shortly."
	default:
		return "Payment successful. Your ticket could not be issued or emailed, download it from your bookings."
	}
}
