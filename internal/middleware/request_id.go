package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"time-ledger/internal/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags each request with an id, reusing the client's when sent,
// and logs the request once it completes.
func RequestID(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))

		start := time.Now()
		c.Next()

		l := log.WithContext(c.Request.Context())
		if caller, ok := CurrentCaller(c); ok {
			l = l.WithUser(caller.UserID)
		}
		l.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
