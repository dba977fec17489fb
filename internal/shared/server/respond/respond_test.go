package respond

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"pdf-assistant-api/internal/shared/telemetry"
)

func TestErrorWritesEnvelopeAndLogs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var logs bytes.Buffer
	restore := telemetry.SetOutput(&logs)
	defer restore()

	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		c.Set("requestId", "req-1")
		Error(c, http.StatusInternalServerError, "Failed to list PDFs", "dynamodb unavailable")
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	var body Envelope
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Message != "Failed to list PDFs" || body.Error != "dynamodb unavailable" {
		t.Fatalf("unexpected body %+v", body)
	}
	if !strings.Contains(logs.String(), `"request_id":"req-1"`) {
		t.Fatalf("expected request id in log, got %s", logs.String())
	}
}

func TestOKOmitsEmptyFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ok", func(c *gin.Context) { OK(c, "", gin.H{"total": 0}) })

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ok", nil))

	if got := strings.TrimSpace(resp.Body.String()); got != `{"success":true,"data":{"total":0}}` {
		t.Fatalf("unexpected body %s", got)
	}
}
