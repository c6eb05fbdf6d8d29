package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/loopreach/loopreach/internal/logger"
	"github.com/loopreach/loopreach/internal/types"
)

const (
	RequestIDHeader    = "X-Request-ID"
	OrganizationHeader = "X-Organization-ID"
)

// RequestID propagates or assigns a request id and echoes it back to the
// caller for log correlation.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = types.GenerateUUID()
		}

		ctx := types.SetRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// RequestLogger emits one structured line per request after it completes
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Infow("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", types.GetRequestID(c.Request.Context()),
		)
	}
}

// OrganizationContext copies the tenant header into the request context for
// internal surfaces. Authentication happens upstream; webhook endpoints do
// not use this; they resolve the tenant from provider hints instead.
func OrganizationContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if organizationID := c.GetHeader(OrganizationHeader); organizationID != "" {
			ctx := types.SetOrganizationID(c.Request.Context(), organizationID)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
