package middleware

import (
	"time"

	"tourly/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID carries the request id in both directions
const HeaderRequestID = "X-Request-ID"

// ContextRequestID is the gin context key holding the request id
const ContextRequestID = "request_id"

// RequestLogger logs one record per request, tagged with the request id and,
// once auth has run, the caller's user id. An incoming X-Request-ID is reused.
func RequestLogger(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()

		reqLog := l.WithRequestID(requestID)
		if userID := UserID(c); userID != "" {
			reqLog = reqLog.WithUserID(userID)
		}
		if last := c.Errors.Last(); last != nil {
			reqLog = reqLog.WithError(last.Err)
		}
		reqLog.LogHTTPRequest(c, time.Since(start))
	}
}

// RequestID returns the id assigned by RequestLogger
func RequestID(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}
