package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"tourly/internal/activities"
	"tourly/internal/bookings"
	"tourly/internal/profiles"
	"tourly/internal/shared/config"
	"tourly/internal/shared/database"
	"tourly/pkg/logger"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/lithammer/shortuuid/v3"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Seeder struct {
	db         *database.DB
	references *bookings.ReferenceGenerator
	currency   string
}

func main() {
	fmt.Println("Starting Tourly database seeder...")

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.InitDB(cfg, logger.NewWithWriter(os.Stdout, "warn"))
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{
		db:         db,
		references: bookings.NewReferenceGenerator(cfg.Booking.ReferencePrefix),
		currency:   cfg.Booking.DefaultCurrency,
	}

	fmt.Println("\nCleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("\nSeeding database...")
	if err := seeder.SeedAll(context.Background()); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("\nSeeding completed. Admin login: admin@tourly.app / qwerty")
}

// CleanDatabase truncates all tables, children first
func (s *Seeder) CleanDatabase() error {
	tables := []string{"bookings", "activity_images", "activities", "profiles"}

	return s.db.PostgreSQL.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			fmt.Printf("  Truncating table: %s\n", table)
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

func (s *Seeder) SeedAll(ctx context.Context) error {
	profileIDs, err := s.SeedProfiles()
	if err != nil {
		return fmt.Errorf("failed to seed profiles: %w", err)
	}

	activityList, err := s.SeedActivities()
	if err != nil {
		return fmt.Errorf("failed to seed activities: %w", err)
	}

	if err := s.SeedBookings(profileIDs, activityList); err != nil {
		return fmt.Errorf("failed to seed bookings: %w", err)
	}

	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: failed to clear Redis cache: %v", err)
		}
	}
	return nil
}

// SeedProfiles creates one admin, one registered customer and one guest
func (s *Seeder) SeedProfiles() (map[string]string, error) {
	fmt.Println("  Seeding profiles...")

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	adminID, customerID := uuid.NewString(), uuid.NewString()
	guestID := bookings.GuestIDPrefix + shortuuid.New()
	seed := []profiles.Profile{
		{
			ID: adminID, AuthUserID: adminID,
			FirstName: "Admin", LastName: "User", Email: "admin@tourly.app",
			ProfileType: profiles.ProfileTypeRegistered, Role: profiles.RoleAdmin,
			PasswordHash: string(hashedPassword),
		},
		{
			ID: customerID, AuthUserID: customerID,
			FirstName: "Maria", LastName: "Garcia", Email: "maria.garcia@example.com",
			ProfileType: profiles.ProfileTypeRegistered, Role: profiles.RoleUser,
			PasswordHash: string(hashedPassword),
		},
		{
			ID: guestID, Phone: "+34 600 000 000",
			FirstName: "Tom", LastName: "Guest", Email: "tom@example.com",
			ProfileType: profiles.ProfileTypeGuest, Role: profiles.RoleUser,
		},
	}

	ids := make(map[string]string, len(seed))
	for i := range seed {
		if err := s.db.PostgreSQL.Create(&seed[i]).Error; err != nil {
			return nil, fmt.Errorf("failed to create profile %s: %w", seed[i].Email, err)
		}
		ids[seed[i].Email] = seed[i].ID
		fmt.Printf("    Created %s profile: %s\n", seed[i].ProfileType, seed[i].Email)
	}
	return ids, nil
}

func (s *Seeder) SeedActivities() ([]activities.Activity, error) {
	fmt.Println("  Seeding activities...")

	seed := []activities.Activity{
		{Title: "Sunset Catamaran Cruise", Category: "boat-tours", Location: "Barcelona",
			DurationMinutes: 150, PriceAdult: 65, PriceChild: 35, PriceSenior: 55, MaxParticipants: 12,
			Description: "Sail along the coast as the sun goes down, drinks included."},
		{Title: "Gothic Quarter Walking Tour", Category: "walking-tours", Location: "Barcelona",
			DurationMinutes: 120, PriceAdult: 25, PriceChild: 0, PriceSenior: 20, MaxParticipants: 20,
			Description: "Two hours through medieval lanes with a local historian."},
		{Title: "Tapas and Wine Evening", Category: "food", Location: "Barcelona",
			DurationMinutes: 180, PriceAdult: 89, PriceSenior: 79, MaxParticipants: 10,
			Description: "Four bars, eight tapas, three wines."},
		{Title: "Montserrat Day Trip", Category: "day-trips", Location: "Montserrat",
			DurationMinutes: 480, PriceAdult: 110, PriceChild: 70, PriceSenior: 95, MaxParticipants: 16,
			Description: "Rack railway, monastery visit and a guided hike."},
	}

	for i := range seed {
		seed[i].ID = activities.NewActivityID()
		seed[i].Slug = activities.Slugify(seed[i].Title)
		seed[i].Currency = s.currency
		seed[i].IsActive = true

		if err := s.db.PostgreSQL.Create(&seed[i]).Error; err != nil {
			return nil, fmt.Errorf("failed to create activity %s: %w", seed[i].Title, err)
		}
		fmt.Printf("    Created activity: %s (%s)\n", seed[i].Title, seed[i].ID)
	}
	return seed, nil
}

// SeedBookings writes a few bookings across statuses so the dashboard has data
func (s *Seeder) SeedBookings(profileIDs map[string]string, list []activities.Activity) error {
	fmt.Println("  Seeding bookings...")

	day := time.Now().AddDate(0, 0, 14).Format("2006-01-02")
	seed := []struct {
		email    string
		name     string
		activity activities.Activity
		adults   int
		children int
		status   bookings.Status
	}{
		{"maria.garcia@example.com", "Maria Garcia", list[0], 2, 1, bookings.StatusConfirmed},
		{"maria.garcia@example.com", "Maria Garcia", list[2], 2, 0, bookings.StatusPending},
		{"tom@example.com", "Tom Guest", list[1], 1, 0, bookings.StatusConfirmed},
		{"tom@example.com", "Tom Guest", list[3], 1, 2, bookings.StatusCancelled},
	}

	for _, b := range seed {
		reference, err := s.references.Next()
		if err != nil {
			return err
		}

		total := float64(b.adults)*b.activity.PriceAdult + float64(b.children)*b.activity.PriceChild
		booking := bookings.Booking{
			ID:                uuid.New(),
			BookingReference:  reference,
			ActivityID:        b.activity.ID,
			CustomerID:        profileIDs[b.email],
			BookingDate:       day,
			BookingTime:       "10:00",
			Adults:            b.adults,
			Children:          b.children,
			TotalParticipants: b.adults + b.children,
			Subtotal:          total,
			TotalAmount:       total,
			Currency:          b.activity.Currency,
			CustomerName:      b.name,
			CustomerEmail:     b.email,
			Status:            b.status,
		}
		if b.status == bookings.StatusCancelled {
			now := time.Now()
			booking.CancelledAt = &now
		}

		if err := s.db.PostgreSQL.Create(&booking).Error; err != nil {
			return fmt.Errorf("failed to create booking for %s: %w", b.email, err)
		}
		fmt.Printf("    Created booking: %s (%s)\n", booking.BookingReference, booking.Status)
	}
	return nil
}
