package s3

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "1700000000000-a.pdf", want: "1700000000000-a.pdf"},
		{name: "simple prefix", prefix: "root", key: "1700000000000-a.pdf", want: "root/1700000000000-a.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "1700000000000-a.pdf", want: "root/1700000000000-a.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/1700000000000-a.pdf", want: "root/1700000000000-a.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "1700000000000-a.pdf", want: "root/sub/1700000000000-a.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func testStore(prefix string) *Store {
	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider("AKID", "SECRET", "")),
	}
	return NewFromConfig(cfg, "bucket", prefix, "")
}

func TestPresignPutSignedHeadersExcludeContentLength(t *testing.T) {
	store := testStore("")

	raw, err := store.PresignPut(context.Background(), "1700000000000-a.pdf", "application/pdf", 5*time.Minute)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}

	signed := parsed.Query().Get("X-Amz-SignedHeaders")
	if signed == "" {
		t.Fatalf("expected X-Amz-SignedHeaders")
	}
	if strings.Contains(signed, "content-length") {
		t.Fatalf("unexpected content-length in signed headers: %s", signed)
	}
	if !strings.Contains(signed, "host") {
		t.Fatalf("expected host in signed headers: %s", signed)
	}
	if got := parsed.Query().Get("X-Amz-Expires"); got != "300" {
		t.Fatalf("expected 300s expiry, got %q", got)
	}
}

func TestPresignGetAppliesPrefixAndExpiry(t *testing.T) {
	store := testStore("pdfs/")

	raw, err := store.PresignGet(context.Background(), "1700000000000-a.pdf", time.Hour)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if !strings.HasSuffix(parsed.Path, "/pdfs/1700000000000-a.pdf") {
		t.Fatalf("expected prefixed key in path, got %s", parsed.Path)
	}
	if got := parsed.Query().Get("X-Amz-Expires"); got != "3600" {
		t.Fatalf("expected 3600s expiry, got %q", got)
	}
}
