package database

import (
	"fmt"

	"triptrek/internal/bookings"
	"triptrek/internal/catalog"
	"triptrek/internal/offers"
	"triptrek/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// uuid_generate_v4() column defaults
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to enable uuid-ossp: %w", err)
	}

	err := db.AutoMigrate(
		&users.User{},
		&catalog.Destination{},
		&catalog.Package{},
		&offers.Offer{},
		&bookings.Booking{},
		&bookings.Payment{},
	)
	if err != nil {
		return err
	}

	return MigrateConstraints(db)
}
