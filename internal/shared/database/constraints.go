package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Statements are idempotent so they run on every start
var constraintStatements = []struct {
	name string
	sql  string
}{
	{
		// Offer codes are matched case-insensitively
		name: "idx_offers_code_lower",
		sql:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_offers_code_lower ON offers (LOWER(code))`,
	},
	{
		// Callbacks are looked up by gateway order id
		name: "idx_payments_gateway_order_id_unique",
		sql: `CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_gateway_order_id_unique
			ON payments (gateway_order_id) WHERE gateway_order_id <> ''`,
	},
	{
		name: "idx_bookings_user_booking_time",
		sql:  `CREATE INDEX IF NOT EXISTS idx_bookings_user_booking_time ON bookings (user_id, booking_time DESC)`,
	},
	{
		name: "fk_packages_destination",
		sql:  addForeignKey("packages", "fk_packages_destination", "destination_id", "destinations", "RESTRICT"),
	},
	{
		name: "fk_bookings_user",
		sql:  addForeignKey("bookings", "fk_bookings_user", "user_id", "users", "RESTRICT"),
	},
	{
		name: "fk_bookings_package",
		sql:  addForeignKey("bookings", "fk_bookings_package", "package_id", "packages", "RESTRICT"),
	},
	{
		name: "fk_bookings_offer",
		sql:  addForeignKey("bookings", "fk_bookings_offer", "offer_id", "offers", "SET NULL"),
	},
	{
		name: "fk_payments_booking",
		sql:  addForeignKey("payments", "fk_payments_booking", "booking_id", "bookings", "CASCADE"),
	},
}

// Postgres has no ADD CONSTRAINT IF NOT EXISTS
func addForeignKey(table, name, column, refTable, onDelete string) string {
	return fmt.Sprintf(`DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%[2]s') THEN
		ALTER TABLE %[1]s ADD CONSTRAINT %[2]s
			FOREIGN KEY (%[3]s) REFERENCES %[4]s (id) ON DELETE %[5]s;
	END IF;
END $$`, table, name, column, refTable, onDelete)
}

// MigrateConstraints adds the indexes and foreign keys AutoMigrate leaves out
func MigrateConstraints(db *gorm.DB) error {
	for _, stmt := range constraintStatements {
		if err := db.Exec(stmt.sql).Error; err != nil {
			return fmt.Errorf("failed to apply %s: %w", stmt.name, err)
		}
	}
	return nil
}
