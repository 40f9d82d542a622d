package bookings

import (
	"context"
	"errors"
	"math"
	"time"

	"tourly/internal/profiles"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound    = errors.New("booking not found")
	ErrDuplicateReference = errors.New("booking reference already exists")
	ErrStatusConflict     = errors.New("booking status changed concurrently")
)

// TxRepository is the write surface available inside a booking transaction
type TxRepository interface {
	Profiles() profiles.Writer
	Create(ctx context.Context, booking *Booking) error
}

type Repository interface {
	// WithinTransaction commits when fn returns nil and rolls back otherwise
	WithinTransaction(ctx context.Context, fn func(tx TxRepository) error) error

	GetByReference(ctx context.Context, reference string) (*Booking, error)
	ListByCustomer(ctx context.Context, customerID string, query ListQuery) ([]Booking, int64, error)
	List(ctx context.Context, query ListQuery) ([]Booking, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, at time.Time) error
	SetPaymentIntent(ctx context.Context, id uuid.UUID, paymentIntentID string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type txRepository struct {
	tx *gorm.DB
}

func (t *txRepository) Profiles() profiles.Writer {
	return profiles.NewRepository(t.tx)
}

func (t *txRepository) Create(ctx context.Context, booking *Booking) error {
	err := t.tx.WithContext(ctx).Create(booking).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateReference
	}
	return err
}

func (r *repository) WithinTransaction(ctx context.Context, fn func(tx TxRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txRepository{tx: tx})
	})
}

func (r *repository) GetByReference(ctx context.Context, reference string) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("booking_reference = ?", reference).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID string, query ListQuery) ([]Booking, int64, error) {
	db := r.db.WithContext(ctx).Model(&Booking{}).Where("customer_id = ?", customerID)
	return r.page(r.applyFilters(db, query), query)
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]Booking, int64, error) {
	db := r.db.WithContext(ctx).Model(&Booking{})
	return r.page(r.applyFilters(db, query), query)
}

func (r *repository) page(db *gorm.DB, query ListQuery) ([]Booking, int64, error) {
	var bookings []Booking
	var totalCount int64

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC").
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}
	return bookings, totalCount, nil
}

// UpdateStatus only applies while the row still holds from
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, at time.Time) error {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": at,
	}
	if to == StatusCancelled {
		updates["cancelled_at"] = at
	}

	result := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *repository) SetPaymentIntent(ctx context.Context, id uuid.UUID, paymentIntentID string) error {
	return r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ?", id).
		Update("payment_intent_id", paymentIntentID).Error
}

func (r *repository) applyFilters(query *gorm.DB, filters ListQuery) *gorm.DB {
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.ActivityID != "" {
		query = query.Where("activity_id = ?", filters.ActivityID)
	}
	// booking_date is stored as YYYY-MM-DD so lexical comparison is chronological
	if filters.DateFrom != "" {
		query = query.Where("booking_date >= ?", filters.DateFrom)
	}
	if filters.DateTo != "" {
		query = query.Where("booking_date <= ?", filters.DateTo)
	}
	return query
}

func CalculateTotalPages(totalCount int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalCount) / float64(limit)))
}
