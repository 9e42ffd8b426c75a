package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"triptrek/internal/bookings"
	"triptrek/internal/notifications"
	"triptrek/internal/shared/config"
	"triptrek/pkg/logger"
	"triptrek/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStore is the payment half of the bookings repository
type PaymentStore interface {
	OpenPaymentOrder(ctx context.Context, bookingID uuid.UUID, orderID string, amount decimal.Decimal, currency string) (*bookings.Payment, error)
	GetPaymentByOrderID(ctx context.Context, orderID string) (*bookings.Payment, error)
}

type Service interface {
	// OpenOrder creates a fresh gateway order for a PENDING booking owned by userID
	OpenOrder(ctx context.Context, userID, bookingID uuid.UUID) (*RemoteOrder, error)
	// VerifyCallback checks the gateway signature and confirms the booking behind orderID
	VerifyCallback(ctx context.Context, orderID, paymentID, signature string) (*bookings.Booking, error)
}

type service struct {
	bookings  bookings.Service
	store     PaymentStore
	gateway   Gateway
	locker    OrderLocker
	publisher notifications.Publisher
	config    config.PaymentConfig
	log       *logger.Logger
}

func NewService(
	bookingService bookings.Service,
	store PaymentStore,
	gateway Gateway,
	locker OrderLocker,
	publisher notifications.Publisher,
	cfg config.PaymentConfig,
	log *logger.Logger,
) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	if locker == nil {
		locker = NoopOrderLocker{}
	}
	if publisher == nil {
		publisher = notifications.NoopPublisher{}
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &service{
		bookings:  bookingService,
		store:     store,
		gateway:   gateway,
		locker:    locker,
		publisher: publisher,
		config:    cfg,
		log:       log,
	}
}

func (s *service) OpenOrder(ctx context.Context, userID, bookingID uuid.UUID) (*RemoteOrder, error) {
	booking, err := s.bookings.GetUserBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.IsPaid() {
		metrics.PaymentOrders.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		return nil, bookings.ErrAlreadyPaid
	}
	if booking.Status != bookings.StatusPending {
		return nil, bookings.ErrNotPending
	}

	token, err := s.locker.Acquire(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), bookingID, token); err != nil {
			s.log.WarnContext(ctx, "failed to release payment order lock",
				slog.String("booking_id", bookingID.String()), slog.Any("error", err))
		}
	}()

	amountMinor := bookings.ToMinorUnits(booking.TotalAmount)
	receipt := "booking_" + booking.ID.String()

	order, err := s.gateway.CreateOrder(ctx, OrderRequest{
		Amount:   amountMinor,
		Currency: s.config.Currency,
		Receipt:  receipt,
		Notes:    map[string]string{"booking_id": booking.ID.String()},
	})
	if err != nil {
		metrics.PaymentOrders.WithLabelValues(metrics.OutcomeFailure).Inc()
		s.log.ErrorWithContext(ctx, "failed to open payment order", err, map[string]interface{}{
			"booking_id": booking.ID.String(),
		})
		if !errors.Is(err, ErrGateway) {
			err = &GatewayError{Op: "create order", Err: err}
		}
		return nil, err
	}

	if _, err := s.store.OpenPaymentOrder(ctx, booking.ID, order.ID, booking.TotalAmount, s.config.Currency); err != nil {
		if errors.Is(err, bookings.ErrAlreadyPaid) {
			metrics.PaymentOrders.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		}
		return nil, err
	}

	metrics.PaymentOrders.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.log.LogOrderOpened(ctx, booking.ID.String(), order.ID, amountMinor, s.config.Currency)
	notifications.PublishQuietly(ctx, s.publisher, s.log, notifications.NewEvent(
		notifications.EventPaymentOrdered, booking.ID, booking.UserID, map[string]interface{}{
			"order_id": order.ID,
			"amount":   amountMinor,
			"currency": s.config.Currency,
		}))

	return &RemoteOrder{
		OrderID:   order.ID,
		Amount:    amountMinor,
		Currency:  s.config.Currency,
		KeyID:     s.config.KeyID,
		BookingID: booking.ID,
		Receipt:   receipt,
	}, nil
}

func (s *service) VerifyCallback(ctx context.Context, orderID, paymentID, signature string) (*bookings.Booking, error) {
	if !VerifySignature(s.config.KeySecret, orderID, paymentID, signature) {
		metrics.PaymentVerifications.WithLabelValues(metrics.OutcomeTampered).Inc()
		s.log.LogSignatureMismatch(ctx, orderID, paymentID, ClientIPFromContext(ctx))
		return nil, ErrInvalidSignature
	}

	payment, err := s.store.GetPaymentByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, bookings.ErrPaymentNotFound) {
			metrics.PaymentVerifications.WithLabelValues(metrics.OutcomeUnknown).Inc()
			return nil, ErrUnknownOrder
		}
		return nil, err
	}

	wasPaid := payment.Paid
	booking, err := s.bookings.ConfirmPayment(ctx, bookings.PaymentConfirmation{
		PaymentID:        payment.ID,
		GatewayPaymentID: paymentID,
		Signature:        signature,
	})
	if err != nil && booking == nil {
		metrics.PaymentVerifications.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}

	if wasPaid {
		metrics.PaymentVerifications.WithLabelValues(metrics.OutcomeDuplicate).Inc()
	} else {
		metrics.PaymentVerifications.WithLabelValues(metrics.OutcomeSuccess).Inc()
		notifications.PublishQuietly(ctx, s.publisher, s.log, notifications.NewEvent(
			notifications.EventPaymentVerified, booking.ID, booking.UserID, map[string]interface{}{
				"order_id":           orderID,
				"gateway_payment_id": paymentID,
			}))
	}

	// The booking is confirmed even when ticket delivery failed
	return booking, err
}

type clientIPKey struct{}

// WithClientIP tags ctx with the caller's address for audit logging
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}
