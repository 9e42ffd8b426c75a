package offers

import (
	"time"

	"github.com/google/uuid"
)

// MaxDiscountPercent is exclusive. Every redeemable booking keeps a payable total.
const MaxDiscountPercent = 100

// Offer is a percentage discount redeemable by code. The booking flow only reads offers.
type Offer struct {
	ID              uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Code            string     `json:"code" gorm:"uniqueIndex;not null;size:50"`
	Description     string     `json:"description" gorm:"size:255"`
	DiscountPercent int        `json:"discount_percent" gorm:"not null;default:0;check:discount_percent >= 0 AND discount_percent < 100"`
	Active          bool       `json:"active" gorm:"not null;default:true"`
	ValidFrom       *time.Time `json:"valid_from,omitempty" gorm:"type:date"`
	ValidTo         *time.Time `json:"valid_to,omitempty" gorm:"type:date"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

func (Offer) TableName() string {
	return "offers"
}

// IsRedeemableOn reports whether the offer applies on the given calendar day.
// Window bounds are inclusive and compared by date only.
func (o *Offer) IsRedeemableOn(day time.Time) bool {
	if o == nil || !o.Active {
		return false
	}
	// A free booking could never be paid for, so 100% is not redeemable
	if o.DiscountPercent < 0 || o.DiscountPercent >= MaxDiscountPercent {
		return false
	}

	d := dateOf(day)
	if o.ValidFrom != nil && d.Before(dateOf(*o.ValidFrom)) {
		return false
	}
	if o.ValidTo != nil && d.After(dateOf(*o.ValidTo)) {
		return false
	}
	return true
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
