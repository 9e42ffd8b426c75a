package bookings

import (
	"time"

	"triptrek/internal/catalog"
	"triptrek/internal/offers"
	"triptrek/internal/users"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Booking is a reservation of a package for a number of travelers
type Booking struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
	PackageID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"package_id"`
	Travelers   int             `gorm:"not null;default:1;check:travelers >= 1" json:"travelers"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(10,2);not null;check:total_amount >= 0" json:"total_amount"`
	OfferID     *uuid.UUID      `gorm:"type:uuid" json:"offer_id,omitempty"`
	OfferCode   *string         `gorm:"size:50" json:"offer_code,omitempty"`
	Status      Status          `gorm:"type:varchar(20);not null;default:'PENDING';check:status IN ('PENDING', 'CONFIRMED', 'CANCELLED')" json:"status"`
	BookingTime time.Time       `gorm:"autoCreateTime" json:"booking_time"`
	QRCodePath  *string         `gorm:"column:qr_code;size:255" json:"qr_code,omitempty"`
	TicketPath  *string         `gorm:"column:ticket_pdf;size:255" json:"ticket_pdf,omitempty"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User    *users.User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Package *catalog.Package `json:"package,omitempty" gorm:"foreignKey:PackageID"`
	Offer   *offers.Offer    `json:"offer,omitempty" gorm:"foreignKey:OfferID"`
	Payment *Payment         `json:"payment,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
}

// Payment tracks the gateway order for a booking. There is at most one per booking.
type Payment struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID        uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"booking_id"`
	GatewayOrderID   string          `gorm:"size:200;index" json:"gateway_order_id"`
	GatewayPaymentID *string         `gorm:"size:200" json:"gateway_payment_id,omitempty"`
	GatewaySignature *string         `gorm:"size:255" json:"-"`
	Amount           decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency         string          `gorm:"type:varchar(3);not null;default:'INR'" json:"currency"`
	Paid             bool            `gorm:"not null;default:false" json:"paid"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (Payment) TableName() string {
	return "payments"
}

// PaymentRecord returns the associated payment, if one has been opened
func (b *Booking) PaymentRecord() (*Payment, bool) {
	if b.Payment == nil {
		return nil, false
	}
	return b.Payment, true
}

// IsPaid reports whether the booking has a payment marked paid
func (b *Booking) IsPaid() bool {
	p, ok := b.PaymentRecord()
	return ok && p.Paid
}

// IsConfirmed reports whether the booking reached CONFIRMED
func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

// TicketAvailable reports whether ticket artifacts may be produced
func (b *Booking) TicketAvailable() bool {
	return b.IsConfirmed() && b.IsPaid()
}
