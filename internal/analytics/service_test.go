package analytics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"tourly/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	calls     atomic.Int32
	since     time.Time
	revenueEr error
}

func (f *fakeRepository) BookingsByStatus(context.Context) (map[string]int64, error) {
	f.calls.Add(1)
	return map[string]int64{"pending": 4, "confirmed": 6, "cancelled": 1}, nil
}

func (f *fakeRepository) ConfirmedRevenue(context.Context) ([]RevenueByCurrency, error) {
	f.calls.Add(1)
	return []RevenueByCurrency{{Currency: "EUR", Total: 540}}, f.revenueEr
}

func (f *fakeRepository) DailyBookings(_ context.Context, since time.Time) ([]DailyBookingStat, error) {
	f.calls.Add(1)
	f.since = since
	return []DailyBookingStat{{Date: "2024-07-01", Bookings: 3}, {Date: "2024-07-02", Bookings: 5}}, nil
}

func (f *fakeRepository) TopActivities(_ context.Context, limit int) ([]ActivityPerformance, error) {
	f.calls.Add(1)
	return []ActivityPerformance{{ActivityID: "act_1", Title: "Sunset Cruise", Bookings: 7}}[:min(limit, 1)], nil
}

func (f *fakeRepository) ProfilesByType(context.Context) (map[string]int64, error) {
	f.calls.Add(1)
	return map[string]int64{"guest": 9, "registered": 2}, nil
}

// memoryCache stores the last value per key
type memoryCache struct {
	cache.Noop
	values map[string]interface{}
}

func (m *memoryCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetch func() (interface{}, error), dest interface{}) error {
	if v, ok := m.values[key]; ok {
		*dest.(*Dashboard) = *v.(*Dashboard)
		return nil
	}
	v, err := fetch()
	if err != nil {
		return err
	}
	m.values[key] = v
	*dest.(*Dashboard) = *v.(*Dashboard)
	return nil
}

func (m *memoryCache) DeletePattern(context.Context, string) error {
	m.values = map[string]interface{}{}
	return nil
}

func fixedNow() time.Time { return time.Date(2024, 7, 31, 12, 0, 0, 0, time.UTC) }

func TestGetDashboardAggregates(t *testing.T) {
	repo := &fakeRepository{}
	svc := NewService(repo, time.Minute).(*service)
	svc.now = fixedNow

	d, err := svc.GetDashboard(context.Background())

	require.NoError(t, err)
	assert.EqualValues(t, 11, d.TotalBookings)
	assert.EqualValues(t, 11, d.TotalProfiles)
	assert.EqualValues(t, 8, d.RecentBookings)
	assert.Equal(t, "EUR", d.ConfirmedRevenue[0].Currency)
	assert.Len(t, d.TopActivities, 1)
	assert.Equal(t, fixedNow().Add(-30*24*time.Hour), repo.since)
	assert.EqualValues(t, 5, repo.calls.Load())
}

func TestGetDashboardPropagatesQueryError(t *testing.T) {
	repo := &fakeRepository{revenueEr: errors.New("relation \"bookings\" does not exist")}
	svc := NewService(repo, time.Minute)

	_, err := svc.GetDashboard(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "confirmed revenue")
}

func TestGetDashboardIsCached(t *testing.T) {
	repo := &fakeRepository{}
	svc := NewService(repo, time.Minute)
	mc := &memoryCache{values: map[string]interface{}{}}
	svc.SetCacheService(mc)

	_, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)
	_, err = svc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 5, repo.calls.Load())

	require.NoError(t, svc.Invalidate(context.Background()))
	_, err = svc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 10, repo.calls.Load())
}

func TestDashboardEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupAnalyticsRoutes(r.Group("/admin"), NewController(NewService(&fakeRepository{}, time.Minute)))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/analytics/dashboard", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bookings_by_status")
}
