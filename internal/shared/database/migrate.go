package database

import (
	"tourly/internal/activities"
	"tourly/internal/bookings"
	"tourly/internal/profiles"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&profiles.Profile{},
		&activities.Activity{},
		&activities.ActivityImage{},
		&bookings.Booking{},
	)
}
