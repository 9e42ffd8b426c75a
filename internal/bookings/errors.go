package bookings

import "errors"

var (
	ErrInvalidTravelers  = errors.New("travelers must be at least 1")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrPaymentIncomplete = errors.New("payment incomplete")
	ErrAlreadyPaid       = errors.New("booking is already paid")
	ErrNotPending        = errors.New("booking is not awaiting payment")
	ErrBookingCancelled  = errors.New("booking is cancelled")
)
