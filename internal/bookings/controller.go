package bookings

import (
	"errors"
	"net/http"

	"triptrek/internal/catalog"
	"triptrek/internal/shared/middleware"
	"triptrek/internal/shared/utils/response"
	"triptrek/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Controller struct {
	service   Service
	validator *validator.Validate
	log       *logger.Logger
}

func NewController(service Service, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Controller{
		service:   service,
		validator: validator.New(),
		log:       log,
	}
}

// CreateBooking godoc
// @Summary Book a package
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path string true "Package ID"
// @Param request body CreateBookingRequest true "Travelers and optional offer code"
// @Success 201 {object} response.StandardApiResponse{data=BookingResponse}
// @Failure 409 {object} response.StandardApiResponse
// @Router /packages/{id}/bookings [post]
func (c *Controller) CreateBooking(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}

	packageID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid package ID", nil, nil)
		return
	}

	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	booking, err := c.service.CreateBooking(ctx.Request.Context(), userID, packageID, req)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Booking created, awaiting payment", ToBookingResponse(booking), nil)
}

// GetBooking godoc
// @Summary Get one of the caller's bookings
// @Tags bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.StandardApiResponse{data=BookingResponse}
// @Router /bookings/{id} [get]
func (c *Controller) GetBooking(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return
	}

	booking, err := c.service.GetUserBooking(ctx.Request.Context(), userID, bookingID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking retrieved successfully", ToBookingResponse(booking), nil)
}

// GetUserBookings godoc
// @Summary List the caller's bookings
// @Tags bookings
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param status query string false "PENDING, CONFIRMED or CANCELLED"
// @Success 200 {object} response.StandardApiResponse{data=BookingListResponse}
// @Router /bookings [get]
func (c *Controller) GetUserBookings(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}

	var query BookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	bookings, total, err := c.service.GetUserBookings(ctx.Request.Context(), userID, query)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully",
		ToBookingListResponse(bookings, query, total), nil)
}

func (c *Controller) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidTravelers):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, err.Error(), nil, nil)
	case errors.Is(err, catalog.ErrPackageNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Package not found", nil, nil)
	case errors.Is(err, ErrBookingNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Booking not found", nil, nil)
	case errors.Is(err, catalog.ErrInsufficientSlots):
		response.RespondJSON(ctx, "error", http.StatusConflict, "Not enough slots available for this package", nil, nil)
	default:
		c.log.LogHTTPError(ctx, err, http.StatusInternalServerError)
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Something went wrong", nil, nil)
	}
}
