package analytics

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	BookingsByStatus(ctx context.Context) (map[string]int64, error)
	ConfirmedRevenue(ctx context.Context) ([]RevenueByCurrency, error)
	DailyBookings(ctx context.Context, since time.Time) ([]DailyBookingStat, error)
	TopActivities(ctx context.Context, limit int) ([]ActivityPerformance, error)
	ProfilesByType(ctx context.Context) (map[string]int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type groupCount struct {
	Key   string
	Count int64
}

func (r *repository) countBy(ctx context.Context, table, column string) (map[string]int64, error) {
	var rows []groupCount
	err := r.db.WithContext(ctx).
		Table(table).
		Select(column + " AS key, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Count
	}
	return out, nil
}

func (r *repository) BookingsByStatus(ctx context.Context) (map[string]int64, error) {
	return r.countBy(ctx, "bookings", "status")
}

func (r *repository) ProfilesByType(ctx context.Context) (map[string]int64, error) {
	return r.countBy(ctx, "profiles", "profile_type")
}

func (r *repository) ConfirmedRevenue(ctx context.Context) ([]RevenueByCurrency, error) {
	var rows []RevenueByCurrency
	err := r.db.WithContext(ctx).
		Table("bookings").
		Select("currency, COALESCE(SUM(total_amount), 0) AS total").
		Where("status = ?", "confirmed").
		Group("currency").
		Order("currency").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) DailyBookings(ctx context.Context, since time.Time) ([]DailyBookingStat, error) {
	var rows []DailyBookingStat
	err := r.db.WithContext(ctx).
		Table("bookings").
		Select(`TO_CHAR(DATE(created_at), 'YYYY-MM-DD') AS date,
			COUNT(*) AS bookings,
			COALESCE(SUM(total_amount) FILTER (WHERE status = 'confirmed'), 0) AS revenue`).
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Order("DATE(created_at)").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) TopActivities(ctx context.Context, limit int) ([]ActivityPerformance, error) {
	var rows []ActivityPerformance
	err := r.db.WithContext(ctx).
		Table("bookings b").
		Select(`b.activity_id, COALESCE(a.title, '') AS title,
			COUNT(*) AS bookings, COALESCE(SUM(b.total_participants), 0) AS participants`).
		Joins("LEFT JOIN activities a ON a.id = b.activity_id").
		Where("b.status <> ?", "cancelled").
		Group("b.activity_id, a.title").
		Order("bookings DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
