package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Destination struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name        string    `json:"name" gorm:"not null;size:200"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;not null;size:200"`
	Country     string    `json:"country" gorm:"size:100"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`

	Packages []Package `json:"packages,omitempty" gorm:"foreignKey:DestinationID;constraint:OnDelete:CASCADE;"`
}

// Package is a bookable trip. AvailableSlots only moves through ReserveSlots.
type Package struct {
	ID               uuid.UUID       `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	DestinationID    uuid.UUID       `json:"destination_id" gorm:"type:uuid;index;not null"`
	Title            string          `json:"title" gorm:"not null;size:200"`
	Slug             string          `json:"slug" gorm:"uniqueIndex;not null;size:200"`
	ShortDescription string          `json:"short_description" gorm:"size:255"`
	Description      string          `json:"description" gorm:"type:text"`
	Price            decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null;check:price >= 0"`
	DurationDays     int             `json:"duration_days" gorm:"not null;default:1;check:duration_days > 0"`
	TotalSlots       int             `json:"total_slots" gorm:"not null;default:20;check:total_slots >= 0"`
	AvailableSlots   int             `json:"available_slots" gorm:"not null;default:20;check:chk_packages_slots_range,available_slots >= 0 AND available_slots <= total_slots"`
	StartDate        time.Time       `json:"start_date" gorm:"type:date;not null"`
	EndDate          time.Time       `json:"end_date" gorm:"type:date;not null"`
	CreatedAt        time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time       `json:"updated_at" gorm:"autoUpdateTime"`

	Destination *Destination `json:"destination,omitempty" gorm:"foreignKey:DestinationID"`
}

func (Destination) TableName() string {
	return "destinations"
}

func (Package) TableName() string {
	return "packages"
}

// HasSlots reports whether n travelers fit in the last known availability
func (p *Package) HasSlots(n int) bool {
	return n > 0 && p.AvailableSlots >= n
}
