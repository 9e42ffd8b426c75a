package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"triptrek/internal/catalog"
	"triptrek/internal/notifications"
	"triptrek/internal/offers"
	"triptrek/pkg/logger"
	"triptrek/pkg/metrics"

	"github.com/google/uuid"
)

// ConfirmationHook runs once a booking has been confirmed by payment.
// The ticket issuer implements it.
type ConfirmationHook interface {
	OnConfirmed(ctx context.Context, booking *Booking) error
}

// Service interface defines the contract for booking business logic
type Service interface {
	CreateBooking(ctx context.Context, userID, packageID uuid.UUID, req CreateBookingRequest) (*Booking, error)
	GetUserBooking(ctx context.Context, userID, bookingID uuid.UUID) (*Booking, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error)

	// ConfirmPayment marks a payment paid and its booking CONFIRMED, then runs the confirmation hook
	ConfirmPayment(ctx context.Context, confirmation PaymentConfirmation) (*Booking, error)
	TransitionToConfirmed(ctx context.Context, bookingID uuid.UUID) (*Booking, error)

	// SetConfirmationHook installs the post-confirmation step. The hook depends
	// on this service, so it is attached after construction.
	SetConfirmationHook(hook ConfirmationHook)
}

type service struct {
	repo      Repository
	catalog   catalog.Service
	offers    offers.Service
	publisher notifications.Publisher
	hook      ConfirmationHook
	log       *logger.Logger
	now       func() time.Time
}

// NewService creates a new booking service instance
func NewService(repo Repository, catalogService catalog.Service, offerService offers.Service, publisher notifications.Publisher, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	if publisher == nil {
		publisher = notifications.NoopPublisher{}
	}
	return &service{
		repo:      repo,
		catalog:   catalogService,
		offers:    offerService,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

func (s *service) SetConfirmationHook(hook ConfirmationHook) {
	s.hook = hook
}

func (s *service) CreateBooking(ctx context.Context, userID, packageID uuid.UUID, req CreateBookingRequest) (*Booking, error) {
	if req.Travelers < 1 {
		return nil, ErrInvalidTravelers
	}

	pkg, err := s.catalog.GetPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}
	// Cached availability can be stale, the reservation below is authoritative
	if !pkg.HasSlots(req.Travelers) {
		metrics.SlotsExhausted.Inc()
		return nil, catalog.ErrInsufficientSlots
	}

	offer, err := s.offers.Resolve(ctx, req.OfferCode, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve offer: %w", err)
	}

	discountPercent := 0
	if offer != nil {
		discountPercent = offer.DiscountPercent
	}

	booking := &Booking{
		UserID:      userID,
		PackageID:   pkg.ID,
		Travelers:   req.Travelers,
		TotalAmount: ComputeTotal(pkg.Price, req.Travelers, discountPercent),
		Status:      StatusPending,
	}
	if offer != nil {
		booking.OfferID = &offer.ID
		code := offer.Code
		booking.OfferCode = &code
	}

	if err := s.repo.CreateWithReservation(ctx, booking); err != nil {
		if errors.Is(err, catalog.ErrInsufficientSlots) {
			metrics.SlotsExhausted.Inc()
		}
		return nil, err
	}
	s.catalog.InvalidatePackage(ctx, pkg.ID)
	booking.Package = pkg

	metrics.BookingsCreated.WithLabelValues(fmt.Sprintf("%t", offer != nil)).Inc()
	s.log.LogBookingCreated(ctx, booking.ID.String(), pkg.ID.String(), userID.String(),
		booking.Travelers, booking.TotalAmount.StringFixed(2))

	notifications.PublishQuietly(ctx, s.publisher, s.log, notifications.NewEvent(
		notifications.EventBookingCreated, booking.ID, userID, map[string]interface{}{
			"package_id":   pkg.ID.String(),
			"travelers":    booking.Travelers,
			"total_amount": booking.TotalAmount.StringFixed(2),
			"offer_code":   booking.OfferCode,
		}))

	return booking, nil
}

// GetUserBooking loads a booking owned by userID. Foreign bookings look missing.
func (s *service) GetUserBooking(ctx context.Context, userID, bookingID uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

func (s *service) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	return s.repo.GetUserBookings(ctx, userID, query)
}

func (s *service) ConfirmPayment(ctx context.Context, confirmation PaymentConfirmation) (*Booking, error) {
	payment, changed, err := s.repo.MarkPaidAndConfirm(ctx, confirmation.PaymentID,
		confirmation.GatewayPaymentID, confirmation.Signature, s.now().UTC())
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.GetByID(ctx, payment.BookingID)
	if err != nil {
		return nil, err
	}
	if !changed {
		return booking, nil
	}

	metrics.BookingsConfirmed.Inc()
	s.log.LogBookingConfirmed(ctx, booking.ID.String(), payment.ID.String())
	notifications.PublishQuietly(ctx, s.publisher, s.log, notifications.NewEvent(
		notifications.EventBookingConfirmed, booking.ID, booking.UserID, map[string]interface{}{
			"payment_id": payment.ID.String(),
			"amount":     payment.Amount.StringFixed(2),
			"currency":   payment.Currency,
		}))

	if err := s.runHook(ctx, booking); err != nil {
		return booking, err
	}
	return booking, nil
}

func (s *service) TransitionToConfirmed(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsPaid() {
		return nil, ErrPaymentIncomplete
	}
	if booking.IsConfirmed() {
		return booking, nil
	}
	if !booking.Status.CanConfirm() {
		return nil, ErrBookingCancelled
	}

	changed, err := s.repo.ConfirmStatus(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !changed {
		// Lost a race with another confirmation; report the current state
		return s.repo.GetByID(ctx, bookingID)
	}
	booking.Status = StatusConfirmed

	metrics.BookingsConfirmed.Inc()
	s.log.LogBookingConfirmed(ctx, booking.ID.String(), booking.Payment.ID.String())

	if err := s.runHook(ctx, booking); err != nil {
		return booking, err
	}
	return booking, nil
}

func (s *service) runHook(ctx context.Context, booking *Booking) error {
	if s.hook == nil {
		return nil
	}
	if err := s.hook.OnConfirmed(ctx, booking); err != nil {
		return fmt.Errorf("post-confirmation step failed for booking %s: %w", booking.ID, err)
	}
	return nil
}
