package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope wraps every response body.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes a successful envelope with a 200 status.
func OK(c *gin.Context, message string, data any) {
	JSON(c, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}
