package extract

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"pdf-assistant-api/internal/extract/pdftest"
	"pdf-assistant-api/internal/shared/storage/object/local"
)

func TestPDFSinglePage(t *testing.T) {
	res, err := PDF(context.Background(), pdftest.Build("Quarterly invoice"))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if res.Pages != 1 {
		t.Fatalf("expected 1 page, got %d", res.Pages)
	}
	if !strings.Contains(res.Text, "Quarterly invoice") {
		t.Fatalf("expected text to contain page content, got %q", res.Text)
	}
}

func TestPDFCountsEveryPage(t *testing.T) {
	res, err := PDF(context.Background(), pdftest.Build("one", "two", "three"))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if res.Pages != 3 {
		t.Fatalf("expected 3 pages, got %d", res.Pages)
	}
}

func TestPDFRejectsGarbage(t *testing.T) {
	if _, err := PDF(context.Background(), []byte("not a pdf")); err == nil {
		t.Fatal("expected error for non-pdf bytes")
	}
	if _, err := PDF(context.Background(), nil); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestFromStore(t *testing.T) {
	ctx := context.Background()
	store := local.New(t.TempDir(), "http://localhost:3000")
	if _, err := store.Put(ctx, "1700000000000-a.pdf", MimePDF, bytes.NewReader(pdftest.Build("hello"))); err != nil {
		t.Fatalf("put: %v", err)
	}

	res, err := FromStore(ctx, store, "1700000000000-a.pdf")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if res.Pages != 1 {
		t.Fatalf("expected 1 page, got %d", res.Pages)
	}

	if _, err := FromStore(ctx, store, "missing.pdf"); err == nil {
		t.Fatal("expected error for missing object")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("héllo", 2); got != "hé" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := Truncate("abc", 0); got != "abc" {
		t.Fatalf("max 0 should not truncate, got %q", got)
	}
}
