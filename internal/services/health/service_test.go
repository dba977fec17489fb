package health

import (
	"context"
	"errors"
	"testing"
)

func TestStatusOK(t *testing.T) {
	svc := NewService(map[string]string{"storage": "local"}, Probe{Name: "cache"})
	got := svc.Status(context.Background())
	if got["status"] != "OK" {
		t.Fatalf("expected OK, got %v", got["status"])
	}
	if got["storage"] != "local" {
		t.Fatalf("expected storage info, got %v", got["storage"])
	}
}

func TestStatusDegradedWhenProbeFails(t *testing.T) {
	svc := NewService(nil, Probe{Name: "database", Check: func(context.Context) error {
		return errors.New("connection refused")
	}})
	got := svc.Status(context.Background())
	if got["status"] != "DEGRADED" {
		t.Fatalf("expected DEGRADED, got %v", got["status"])
	}
	checks := got["checks"].(map[string]string)
	if checks["database"] != "connection refused" {
		t.Fatalf("unexpected database check %q", checks["database"])
	}
}
