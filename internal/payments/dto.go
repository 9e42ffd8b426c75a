package payments

import "github.com/google/uuid"

// RemoteOrder is what the client needs to launch the gateway checkout
type RemoteOrder struct {
	OrderID   string    `json:"order_id"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	KeyID     string    `json:"key_id"`
	BookingID uuid.UUID `json:"booking_id"`
	Receipt   string    `json:"receipt"`
}

// VerifyPaymentRequest is the checkout success callback as posted by the client
type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" form:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" form:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" form:"razorpay_signature" binding:"required"`
}
