package respond

import (
	"github.com/gin-gonic/gin"

	"pdf-assistant-api/internal/shared/telemetry"
)

// Error logs and sends a failed envelope. detail carries the underlying error
// text and may be empty.
func Error(c *gin.Context, status int, message, detail string) {
	fields := map[string]any{
		"status":     status,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if detail != "" {
		fields["error"] = detail
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Message: message,
		Error:   detail,
	})
}
