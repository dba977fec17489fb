package chats

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoAppend(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	msg := Message{SessionID: "pdf#a.pdf", Timestamp: "2026-01-01T00:00:00.000000000Z", Role: RoleUser, Content: "hi", PDFID: "a.pdf"}

	mock.ExpectExec("INSERT INTO chat_messages").
		WithArgs(msg.SessionID, msg.Timestamp, msg.Role, msg.Content, "a.pdf").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Append(context.Background(), msg); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoQueryOrdersAndLimits(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	rows := sqlmock.NewRows([]string{"session_id", "ts", "role", "content", "pdf_id"}).
		AddRow("general", "2026-01-01T00:00:00.000000001Z", RoleUser, "hello", nil).
		AddRow("general", "2026-01-01T00:00:00.000000002Z", RoleAssistant, "hi there", nil)

	mock.ExpectQuery("SELECT session_id, ts, role, content, pdf_id").
		WithArgs("general", HistoryPageSize).
		WillReturnRows(rows)

	msgs, err := repo.Query(context.Background(), "general", 0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(msgs) != 2 || msgs[1].Content != "hi there" || msgs[0].PDFID != "" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("DELETE FROM chat_messages").
		WithArgs("general", "2026-01-01T00:00:00.000000001Z").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &PGRepo{DB: db}
	if err := repo.Delete(context.Background(), "general", "2026-01-01T00:00:00.000000001Z"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoLatestReadsNewestPage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	rows := sqlmock.NewRows([]string{"session_id", "ts", "role", "content", "pdf_id"}).
		AddRow("s1", "2026-01-01T00:00:00.000000119Z", RoleUser, "latest", nil)

	mock.ExpectQuery(`ORDER BY ts DESC\s+LIMIT \$2\s+\) latest\s+ORDER BY ts ASC`).
		WithArgs("s1", 10).
		WillReturnRows(rows)

	msgs, err := repo.Latest(context.Background(), "s1", 10)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "latest" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
