package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the constraints AutoMigrate cannot express
func MigrateConstraints(db *gorm.DB) error {
	statements := []string{
		// One registered account per email; guests may repeat
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_profiles_registered_email
			ON profiles (LOWER(email)) WHERE profile_type = 'registered'`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_customer_created
			ON bookings (customer_id, created_at DESC)`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_activity_date
			ON bookings (activity_id, booking_date)`,

		`DO $$ BEGIN
			ALTER TABLE bookings ADD CONSTRAINT chk_bookings_participants
				CHECK (total_participants > 0 AND total_participants = adults + children + seniors);
		EXCEPTION WHEN duplicate_object THEN NULL;
		END $$`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
