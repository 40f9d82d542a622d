package bookings

import (
	"time"

	"github.com/google/uuid"
)

// Booking freezes the lead contact as typed, independent of the linked profile
type Booking struct {
	ID                  uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	BookingReference    string     `json:"booking_reference" gorm:"size:32;not null;uniqueIndex"`
	ActivityID          string     `json:"activity_id" gorm:"type:varchar(64);not null;index"`
	CustomerID          string     `json:"customer_id" gorm:"type:varchar(64);not null;index"`
	BookingDate         string     `json:"booking_date" gorm:"type:varchar(10);not null"`
	BookingTime         string     `json:"booking_time" gorm:"type:varchar(20);not null"`
	Adults              int        `json:"adults" gorm:"not null;default:0;check:adults >= 0"`
	Children            int        `json:"children" gorm:"not null;default:0;check:children >= 0"`
	Seniors             int        `json:"seniors" gorm:"not null;default:0;check:seniors >= 0"`
	TotalParticipants   int        `json:"total_participants" gorm:"not null;check:total_participants > 0"`
	Subtotal            float64    `json:"subtotal" gorm:"type:decimal(10,2);not null;check:subtotal >= 0"`
	TotalAmount         float64    `json:"total_amount" gorm:"type:decimal(10,2);not null;check:total_amount >= 0"`
	Currency            string     `json:"currency" gorm:"type:varchar(3);not null"`
	CustomerName        string     `json:"customer_name" gorm:"size:200;not null"`
	CustomerEmail       string     `json:"customer_email" gorm:"size:255;not null"`
	CustomerPhone       string     `json:"customer_phone" gorm:"size:50"`
	SpecialRequirements string     `json:"special_requirements" gorm:"type:text"`
	Status              Status     `json:"status" gorm:"type:varchar(20);not null;index"`
	PaymentIntentID     string     `json:"payment_intent_id,omitempty" gorm:"size:255;index"`
	CreatedAt           time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	CancelledAt         *time.Time `json:"cancelled_at,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) IsPending() bool {
	return b.Status == StatusPending
}

func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}
