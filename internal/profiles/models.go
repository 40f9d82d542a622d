package profiles

import (
	"time"
)

type ProfileType string

const (
	ProfileTypeGuest      ProfileType = "guest"
	ProfileTypeRegistered ProfileType = "registered"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Profile is the stored identity of a customer. Guests are created lazily at
// booking time; registered profiles come from sign-up.
type Profile struct {
	ID                 string      `json:"id" gorm:"primaryKey;type:varchar(64)"`
	AuthUserID         string      `json:"auth_user_id" gorm:"type:varchar(64);index"`
	FirstName          string      `json:"first_name" gorm:"not null"`
	LastName           string      `json:"last_name" gorm:"not null"`
	Email              string      `json:"email" gorm:"not null;index"`
	Phone              string      `json:"phone,omitempty"`
	ProfileType        ProfileType `json:"profile_type" gorm:"type:varchar(20);not null;default:'guest'"`
	Role               Role        `json:"role" gorm:"type:varchar(20);not null;default:'USER'"`
	PasswordHash       string      `json:"-"`
	StripeCustomerID   string      `json:"stripe_customer_id,omitempty" gorm:"index"`
	SubscriptionID     string      `json:"subscription_id,omitempty"`
	SubscriptionStatus string      `json:"subscription_status,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// FullName joins first and last name
func (p *Profile) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

func (p *Profile) IsRegistered() bool {
	return p.ProfileType == ProfileTypeRegistered
}

func IsValidRole(role string) bool {
	switch Role(role) {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// SubscriptionUpdate carries the payment processor's view of a customer's subscription.
// ProfileID is set when the processor echoes our identifier back (checkout client reference).
type SubscriptionUpdate struct {
	ProfileID        string
	StripeCustomerID string
	SubscriptionID   string
	Status           string
}

// ListFilter narrows the admin profile listing
type ListFilter struct {
	ProfileType string
	Search      string
	Page        int
	Limit       int
}
