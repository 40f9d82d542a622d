package profiles

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
)

type Repository interface {
	Writer
	Create(ctx context.Context, profile *Profile) error
	GetByID(ctx context.Context, id string) (*Profile, error)
	GetRegisteredByEmail(ctx context.Context, email string) (*Profile, error)
	RegisteredEmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id string, hashedPassword string) error
	UpdateRole(ctx context.Context, id string, role Role) error
	UpdateSubscription(ctx context.Context, update SubscriptionUpdate) (int64, error)
	List(ctx context.Context, filter ListFilter) ([]Profile, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// InsertIfAbsent relies on ON CONFLICT DO NOTHING so concurrent first bookings
// for the same identifier cannot both insert.
func (r *repository) InsertIfAbsent(ctx context.Context, profile *Profile) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(profile)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) Create(ctx context.Context, profile *Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*Profile, error) {
	var profile Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repository) GetRegisteredByEmail(ctx context.Context, email string) (*Profile, error) {
	var profile Profile
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?) AND profile_type = ?", email, ProfileTypeRegistered).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repository) RegisteredEmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Profile{}).
		Where("LOWER(email) = LOWER(?) AND profile_type = ?", email, ProfileTypeRegistered).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) UpdatePassword(ctx context.Context, id string, hashedPassword string) error {
	result := r.db.WithContext(ctx).Model(&Profile{}).
		Where("id = ?", id).
		Update("password_hash", hashedPassword)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *repository) UpdateRole(ctx context.Context, id string, role Role) error {
	result := r.db.WithContext(ctx).Model(&Profile{}).
		Where("id = ?", id).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// UpdateSubscription matches by profile id when known, otherwise by processor customer id
func (r *repository) UpdateSubscription(ctx context.Context, update SubscriptionUpdate) (int64, error) {
	fields := map[string]interface{}{
		"subscription_id":     update.SubscriptionID,
		"subscription_status": update.Status,
	}

	query := r.db.WithContext(ctx).Model(&Profile{})
	if update.ProfileID != "" {
		if update.StripeCustomerID != "" {
			fields["stripe_customer_id"] = update.StripeCustomerID
		}
		query = query.Where("id = ?", update.ProfileID)
	} else {
		query = query.Where("stripe_customer_id = ?", update.StripeCustomerID)
	}

	result := query.Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Profile, int64, error) {
	query := r.db.WithContext(ctx).Model(&Profile{})

	if filter.ProfileType != "" {
		query = query.Where("profile_type = ?", filter.ProfileType)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []Profile
	err := query.Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&profiles).Error
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}
