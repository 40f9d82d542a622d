package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tourly/internal/shared/config"
	"tourly/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:         true,
		WindowDuration:  time.Minute,
		DefaultRequests: 60,
		PublicRequests:  100,
		AuthRequests:    10,
		BookingRequests: 20,
		AdminRequests:   200,
		WebhookRequests: 500,
		HealthRequests:  300,
		WhitelistedIPs:  []string{"10.0.0.1"},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want LimitType
	}{
		{"/health", LimitTypeHealth},
		{"/metrics", LimitTypeHealth},
		{"/api/v1/payments/webhook", LimitTypeWebhook},
		{"/api/v1/admin/bookings/:reference/status", LimitTypeAdmin},
		{"/api/v1/auth/login", LimitTypeAuth},
		{"/api/v1/bookings", LimitTypeBooking},
		{"/api/v1/me/bookings/:reference/cancel", LimitTypeBooking},
		{"/api/v1/activities/:id", LimitTypePublic},
		{"/api/v1/profiles/me", LimitTypeDefault},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.path))
		})
	}
}

func TestLimitPerType(t *testing.T) {
	rl := NewRateLimiter(nil, testConfig())

	assert.Equal(t, 20, rl.Limit(LimitTypeBooking))
	assert.Equal(t, 500, rl.Limit(LimitTypeWebhook))
	assert.Equal(t, 60, rl.Limit(LimitType("unknown")))
}

func TestIsAllowedBypasses(t *testing.T) {
	disabled := testConfig()
	disabled.Enabled = false

	for name, rl := range map[string]*RateLimiter{
		"disabled": NewRateLimiter(nil, disabled),
		"no redis": NewRateLimiter(nil, testConfig()),
	} {
		t.Run(name, func(t *testing.T) {
			res, err := rl.IsAllowed(context.Background(), "203.0.113.9", LimitTypeAuth)
			require.NoError(t, err)
			assert.True(t, res.Allowed)
			assert.Equal(t, 10, res.Remaining)
		})
	}

	assert.True(t, NewRateLimiter(nil, testConfig()).isWhitelisted("10.0.0.1"))
	assert.False(t, NewRateLimiter(nil, testConfig()).isWhitelisted("10.0.0.2"))
}

func TestMiddlewareSetsHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(NewRateLimiter(nil, testConfig()), logger.Discard()))
	r.GET("/api/v1/auth/login", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/login", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.3")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
}
