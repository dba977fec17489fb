package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pdf-assistant-api/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log.
const (
	DocumentIDKey = "documentId"
	SessionIDKey  = "sessionId"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"bytes_out":   c.Writer.Size(),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if id := c.Param("id"); id != "" {
			fields["document_id"] = id
		} else if id := c.GetString(DocumentIDKey); id != "" {
			fields["document_id"] = id
		}
		if sid := c.GetString(SessionIDKey); sid != "" {
			fields["session_id"] = sid
		}
		telemetry.Info("request.complete", fields)
	}
}
