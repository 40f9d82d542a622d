package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"tourly/pkg/logger"
)

// DefaultLastName is used when the lead contact gave a single-word name
const DefaultLastName = "Guest"

var ErrEmailRequired = errors.New("email is required to create a guest profile")

// LeadContact is what the customer typed into the booking form
type LeadContact struct {
	CustomerID string
	FullName   string
	Email      string
	Phone      string
}

// Writer is the persistence surface the resolver needs. It is satisfied by the
// gorm repository, bound either to the pool or to an open transaction.
type Writer interface {
	InsertIfAbsent(ctx context.Context, profile *Profile) (bool, error)
	GetByID(ctx context.Context, id string) (*Profile, error)
}

// SplitName splits on the first run of whitespace
func SplitName(fullName string) (first, last string) {
	fullName = strings.TrimSpace(fullName)
	idx := strings.IndexFunc(fullName, unicode.IsSpace)
	if idx < 0 {
		return fullName, DefaultLastName
	}

	first = fullName[:idx]
	last = strings.TrimSpace(fullName[idx:])
	if last == "" {
		last = DefaultLastName
	}
	return first, last
}

// NewGuestProfile builds the minimal profile for a customer identifier that has
// no stored identity yet. The identifier doubles as the auth reference.
func NewGuestProfile(contact LeadContact) (*Profile, error) {
	if strings.TrimSpace(contact.CustomerID) == "" {
		return nil, errors.New("customer identifier is required")
	}
	if strings.TrimSpace(contact.Email) == "" {
		return nil, ErrEmailRequired
	}

	first, last := SplitName(contact.FullName)
	return &Profile{
		ID:          contact.CustomerID,
		AuthUserID:  contact.CustomerID,
		FirstName:   first,
		LastName:    last,
		Email:       strings.TrimSpace(contact.Email),
		Phone:       strings.TrimSpace(contact.Phone),
		ProfileType: ProfileTypeGuest,
		Role:        RoleUser,
	}, nil
}

// Resolver ensures a profile row exists for a booking's customer
type Resolver struct {
	log *logger.Logger
}

func NewResolver(log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Resolver{log: log.WithComponent("profile-resolver")}
}

// Resolve inserts a guest profile for contact.CustomerID unless one already
// exists. Existing rows, guest or registered, are left untouched and returned
// as stored.
func (r *Resolver) Resolve(ctx context.Context, w Writer, contact LeadContact) (*Profile, bool, error) {
	profile, err := NewGuestProfile(contact)
	if err != nil {
		return nil, false, err
	}

	created, err := w.InsertIfAbsent(ctx, profile)
	if err != nil {
		return nil, false, fmt.Errorf("insert profile %s: %w", contact.CustomerID, err)
	}

	if created {
		r.log.LogProfileCreated(ctx, profile.ID, string(profile.ProfileType))
		return profile, true, nil
	}

	stored, err := w.GetByID(ctx, contact.CustomerID)
	if err != nil {
		return nil, false, fmt.Errorf("read profile %s: %w", contact.CustomerID, err)
	}
	return stored, false, nil
}
