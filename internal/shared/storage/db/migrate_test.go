package db

import (
	"bytes"
	"path"
	"strings"
	"testing"

	"pdf-assistant-api/internal/shared/telemetry"
)

func TestEmbeddedMigrationsAreSequential(t *testing.T) {
	migrations, err := Migrations()
	if err != nil {
		t.Fatalf("Migrations: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	for i, m := range migrations {
		if m.Version != int64(i+1) {
			t.Fatalf("expected version %d, got %d (%s)", i+1, m.Version, m.Source)
		}
	}
}

func TestMigrationsCoverRepoColumns(t *testing.T) {
	want := map[string][]string{
		"00001_documents.sql": {
			"CREATE TABLE IF NOT EXISTS documents",
			"id ", "file_name", "original_name", "file_size", "file_size_formatted",
			"uploaded_at", "url", "analysis", "extracted_text",
		},
		"00002_chat_messages.sql": {
			"CREATE TABLE IF NOT EXISTS chat_messages",
			"session_id", "ts ", "role", "content", "pdf_id",
			"PRIMARY KEY (session_id, ts)",
		},
	}
	for name, fragments := range want {
		raw, err := migrationFiles.ReadFile(path.Join(migrationsDir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		sql := string(raw)
		if !strings.Contains(sql, "-- +goose Up") || !strings.Contains(sql, "-- +goose Down") {
			t.Fatalf("%s: missing goose annotations", name)
		}
		for _, fragment := range fragments {
			if !strings.Contains(sql, fragment) {
				t.Fatalf("%s: expected %q", name, fragment)
			}
		}
	}
}

func TestGooseLoggerWritesStructuredLines(t *testing.T) {
	var buf bytes.Buffer
	restore := telemetry.SetOutput(&buf)
	defer restore()

	gooseLogger{}.Printf("OK   %s (%s)\n", "00001_documents.sql", "1.2ms")

	out := buf.String()
	if !strings.Contains(out, `"msg":"db.migration"`) || !strings.Contains(out, "00001_documents.sql") {
		t.Fatalf("unexpected log output: %s", out)
	}
}
