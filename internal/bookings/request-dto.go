package bookings

import "github.com/google/uuid"

type CreateBookingRequest struct {
	Travelers int    `json:"travelers" validate:"required,gt=0"`
	// OfferCode is free text. Codes that match no redeemable offer price like no code.
	OfferCode string `json:"offer_code"`
}

// BookingListQuery carries pagination and filters for a user's bookings
type BookingListQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Status Status `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED CANCELLED"`
}

func (q *BookingListQuery) normalize() {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 10
	}
}

// PaymentConfirmation is a verified gateway callback for a payment row
type PaymentConfirmation struct {
	PaymentID        uuid.UUID
	GatewayPaymentID string
	Signature        string
}
