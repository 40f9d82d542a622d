package analytics

import (
	"context"
	"fmt"
	"time"

	"tourly/internal/shared/constants"
	"tourly/pkg/cache"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const (
	recentWindow     = 30 * 24 * time.Hour
	topActivityLimit = 5
)

type Service interface {
	SetCacheService(cacheService cache.Service)
	GetDashboard(ctx context.Context) (*Dashboard, error)
	GetDailyBookings(ctx context.Context, days int) ([]DailyBookingStat, error)
	Invalidate(ctx context.Context) error
}

type service struct {
	repo         Repository
	cacheService cache.Service
	ttl          time.Duration
	now          func() time.Time
}

func NewService(repo Repository, ttl time.Duration) Service {
	return &service{repo: repo, cacheService: cache.Noop{}, ttl: ttl, now: time.Now}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	if cacheService != nil {
		s.cacheService = cacheService
	}
}

func (s *service) GetDashboard(ctx context.Context) (*Dashboard, error) {
	var dashboard Dashboard
	err := s.cacheService.GetOrSet(ctx, constants.CACHE_KEY_ADMIN_DASHBOARD, s.ttl, func() (interface{}, error) {
		return s.buildDashboard(ctx)
	}, &dashboard)
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

// buildDashboard runs the independent aggregate queries concurrently
func (s *service) buildDashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now()
	d := &Dashboard{GeneratedAt: now}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.BookingsByStatus, err = s.repo.BookingsByStatus(gctx)
		return wrap("bookings by status", err)
	})
	g.Go(func() (err error) {
		d.ConfirmedRevenue, err = s.repo.ConfirmedRevenue(gctx)
		return wrap("confirmed revenue", err)
	})
	g.Go(func() (err error) {
		d.DailyBookings, err = s.repo.DailyBookings(gctx, now.Add(-recentWindow))
		return wrap("daily bookings", err)
	})
	g.Go(func() (err error) {
		d.TopActivities, err = s.repo.TopActivities(gctx, topActivityLimit)
		return wrap("top activities", err)
	})
	g.Go(func() (err error) {
		d.ProfilesByType, err = s.repo.ProfilesByType(gctx)
		return wrap("profiles by type", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.TotalBookings = lo.Sum(lo.Values(d.BookingsByStatus))
	d.TotalProfiles = lo.Sum(lo.Values(d.ProfilesByType))
	d.RecentBookings = lo.SumBy(d.DailyBookings, func(day DailyBookingStat) int64 { return day.Bookings })
	return d, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", what, err)
	}
	return nil
}

func (s *service) GetDailyBookings(ctx context.Context, days int) ([]DailyBookingStat, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	stats, err := s.repo.DailyBookings(ctx, s.now().Add(-time.Duration(days)*24*time.Hour))
	if err != nil {
		return nil, wrap("daily bookings", err)
	}
	return stats, nil
}

func (s *service) Invalidate(ctx context.Context) error {
	return s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_ANALYTICS)
}
