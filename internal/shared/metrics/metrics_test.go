package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCacheUsesKeyNamespace(t *testing.T) {
	before := testutil.ToFloat64(cacheLookups.WithLabelValues("search", "hit"))
	ObserveCache("search:invoice", true)
	after := testutil.ToFloat64(cacheLookups.WithLabelValues("search", "hit"))
	if after-before != 1 {
		t.Fatalf("expected search hit counter to increase by 1, got %v", after-before)
	}

	beforeOther := testutil.ToFloat64(cacheLookups.WithLabelValues("other", "miss"))
	ObserveCache("nonamespace", false)
	if got := testutil.ToFloat64(cacheLookups.WithLabelValues("other", "miss")) - beforeOther; got != 1 {
		t.Fatalf("expected other miss counter to increase by 1, got %v", got)
	}
}

func TestHandlerRendersPrometheusText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	IncUpload("direct")
	IncAnalysisFailed()
	ObserveAICall("analyze", time.Now().Add(-150*time.Millisecond), errors.New("boom"))

	r := gin.New()
	r.GET("/metrics", Handler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	for _, want := range []string{
		`pdf_uploads_total{path="direct"}`,
		"pdf_analysis_failed_total",
		`ai_gateway_duration_ms_bucket{operation="analyze",outcome="error"`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected metrics output to contain %q", want)
		}
	}
}

func TestIncWorkerEvent(t *testing.T) {
	before := testutil.ToFloat64(workerEvents.WithLabelValues("discarded"))
	IncWorkerEvent("discarded")
	if got := testutil.ToFloat64(workerEvents.WithLabelValues("discarded")) - before; got != 1 {
		t.Fatalf("expected discarded counter to increase by 1, got %v", got)
	}
}
