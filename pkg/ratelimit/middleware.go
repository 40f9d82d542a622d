package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"tourly/internal/shared/utils/response"
	"tourly/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Middleware limits requests per client IP and route class. A Redis failure
// lets the request through.
func Middleware(rateLimiter *RateLimiter, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := getClientIP(c)
		limitType := classify(c.FullPath())

		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			log.WarnWithContext(c.Request.Context(), "Rate limit check failed", map[string]interface{}{
				"client_ip":  clientIP,
				"limit_type": string(limitType),
				"error":      err.Error(),
			})
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime, 10))

		if !result.Allowed {
			log.LogRateLimitExceeded(c.Request.Context(), clientIP, c.FullPath())
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded", map[string]interface{}{
				"limit":      result.Limit,
				"reset_time": result.ResetTime,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func classify(path string) LimitType {
	switch {
	case strings.HasPrefix(path, "/health"),
		strings.HasPrefix(path, "/metrics"):
		return LimitTypeHealth

	// Stripe retries aggressively, it gets its own bucket
	case strings.HasSuffix(path, "/payments/webhook"):
		return LimitTypeWebhook

	case strings.Contains(path, "/admin/"):
		return LimitTypeAdmin

	case strings.Contains(path, "/auth/"):
		return LimitTypeAuth

	case strings.Contains(path, "/bookings"):
		return LimitTypeBooking

	case strings.Contains(path, "/activities"):
		return LimitTypePublic

	default:
		return LimitTypeDefault
	}
}

// getClientIP prefers proxy headers, then RemoteAddr
func getClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	if xRealIP := c.GetHeader("X-Real-IP"); net.ParseIP(xRealIP) != nil {
		return xRealIP
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}
