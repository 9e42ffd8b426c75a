package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"triptrek/internal/catalog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// CreateWithReservation persists a PENDING booking and takes its slots in one transaction
	CreateWithReservation(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error)
	// ConfirmStatus moves PENDING to CONFIRMED. It reports false when the booking was not PENDING.
	ConfirmStatus(ctx context.Context, id uuid.UUID) (bool, error)
	RecordArtifacts(ctx context.Context, id uuid.UUID, qrPath, ticketPath string) error

	// Payments
	OpenPaymentOrder(ctx context.Context, bookingID uuid.UUID, orderID string, amount decimal.Decimal, currency string) (*Payment, error)
	GetPaymentByOrderID(ctx context.Context, orderID string) (*Payment, error)
	MarkPaidAndConfirm(ctx context.Context, paymentID uuid.UUID, gatewayPaymentID, signature string, paidAt time.Time) (*Payment, bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateWithReservation(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := catalog.ReserveSlots(tx, booking.PackageID, booking.Travelers); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Package").
		Preload("Package.Destination").
		Preload("Payment").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return &booking, nil
}

func (r *repository) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	var bookings []Booking
	var totalCount int64

	query.normalize()

	baseQuery := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("user_id = ?", userID)
	if query.Status != "" {
		baseQuery = baseQuery.Where("status = ?", query.Status)
	}

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	err := baseQuery.
		Preload("Package").
		Preload("Payment").
		Order("booking_time DESC").
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&bookings).Error

	return bookings, totalCount, err
}

func (r *repository) ConfirmStatus(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status":     StatusConfirmed,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to confirm booking: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) RecordArtifacts(ctx context.Context, id uuid.UUID, qrPath, ticketPath string) error {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if qrPath != "" {
		updates["qr_code"] = qrPath
	}
	if ticketPath != "" {
		updates["ticket_pdf"] = ticketPath
	}

	return r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// OpenPaymentOrder get-or-creates the booking's single payment row and points
// it at orderID. A replaced order starts unpaid. A paid row is never touched.
func (r *repository) OpenPaymentOrder(ctx context.Context, bookingID uuid.UUID, orderID string, amount decimal.Decimal, currency string) (*Payment, error) {
	var payment Payment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Concurrent first opens race on the unique booking_id; the loser inserts nothing
		seed := &Payment{BookingID: bookingID, GatewayOrderID: orderID, Amount: amount, Currency: currency}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "booking_id"}},
			DoNothing: true,
		}).Create(seed).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("booking_id = ?", bookingID).
			First(&payment).Error; err != nil {
			return fmt.Errorf("failed to lock payment: %w", err)
		}

		if payment.Paid {
			return ErrAlreadyPaid
		}
		if payment.GatewayOrderID == orderID && payment.Amount.Equal(amount) {
			return nil
		}

		payment.GatewayOrderID = orderID
		payment.Amount = amount
		payment.Currency = currency
		payment.Paid = false
		payment.PaidAt = nil
		payment.GatewayPaymentID = nil
		payment.GatewaySignature = nil

		return tx.Model(&Payment{}).
			Where("id = ?", payment.ID).
			Updates(map[string]interface{}{
				"gateway_order_id":   orderID,
				"amount":             amount,
				"currency":           currency,
				"paid":               false,
				"paid_at":            nil,
				"gateway_payment_id": nil,
				"gateway_signature":  nil,
				"updated_at":         time.Now(),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) GetPaymentByOrderID(ctx context.Context, orderID string) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).Where("gateway_order_id = ?", orderID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return &payment, nil
}

// MarkPaidAndConfirm flips the payment to paid and its booking to CONFIRMED
// atomically. It reports false, with no writes, when the payment was already paid.
func (r *repository) MarkPaidAndConfirm(ctx context.Context, paymentID uuid.UUID, gatewayPaymentID, signature string, paidAt time.Time) (*Payment, bool, error) {
	var payment Payment
	changed := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", paymentID).
			First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return fmt.Errorf("failed to lock payment: %w", err)
		}
		if payment.Paid {
			return nil
		}

		var booking Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "status").
			Where("id = ?", payment.BookingID).
			First(&booking).Error; err != nil {
			return fmt.Errorf("failed to lock booking: %w", err)
		}
		if booking.Status == StatusCancelled {
			return ErrBookingCancelled
		}

		result := tx.Model(&Payment{}).
			Where("id = ? AND paid = ?", paymentID, false).
			Updates(map[string]interface{}{
				"paid":               true,
				"paid_at":            paidAt,
				"gateway_payment_id": gatewayPaymentID,
				"gateway_signature":  signature,
				"updated_at":         time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to mark payment paid: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if err := tx.Model(&Booking{}).
			Where("id = ?", payment.BookingID).
			Updates(map[string]interface{}{
				"status":     StatusConfirmed,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to confirm booking: %w", err)
		}

		payment.Paid = true
		payment.PaidAt = &paidAt
		payment.GatewayPaymentID = &gatewayPaymentID
		payment.GatewaySignature = &signature
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &payment, changed, nil
}
