package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestID tags every request with an ID, honoring one supplied by the
// caller.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}

		c.Header("X-Request-ID", id)
		c.Set("request_id", id)

		c.Next()
	}
}

// requestLogger logs completed requests with a level matching the status.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString("request_id"),
		}

		switch {
		case status >= 500:
			slog.Error("Request completed", attrs...)
		case status >= 400:
			slog.Warn("Request completed", attrs...)
		default:
			slog.Info("Request completed", attrs...)
		}
	}
}
