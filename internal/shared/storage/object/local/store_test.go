package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"pdf-assistant-api/internal/shared/storage/object"
)

func TestPutOpenDelete(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir(), "http://localhost:3000")

	n, err := store.Put(ctx, "1700000000000-a.pdf", "application/pdf", bytes.NewReader([]byte("%PDF-1.4 body")))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if n != 13 {
		t.Fatalf("expected 13 bytes written, got %d", n)
	}

	rc, err := store.Open(ctx, "1700000000000-a.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "%PDF-1.4 body" {
		t.Fatalf("unexpected body %q", data)
	}

	if err := store.Delete(ctx, "1700000000000-a.pdf"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "1700000000000-a.pdf"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if _, err := store.Open(ctx, "1700000000000-a.pdf"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRejectsTraversal(t *testing.T) {
	store := New(t.TempDir(), "http://localhost:3000")
	if _, err := store.Put(context.Background(), "../escape.pdf", "application/pdf", strings.NewReader("x")); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
}

func TestPresignCarriesExpiry(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	store := New(t.TempDir(), "http://localhost:3000/")
	store.now = func() time.Time { return now }

	raw, err := store.PresignGet(context.Background(), "1700000000000-a b.pdf", time.Hour)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Path != RoutePrefix+"1700000000000-a b.pdf" {
		t.Fatalf("unexpected path %q", parsed.Path)
	}
	expires := parsed.Query().Get("expires")
	if store.Expired(expires) {
		t.Fatalf("fresh url should not be expired")
	}

	now = now.Add(2 * time.Hour)
	if !store.Expired(expires) {
		t.Fatalf("url should be expired after ttl")
	}
	if !store.Expired("garbage") {
		t.Fatalf("malformed expiry should count as expired")
	}
}
