package chats

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Append(ctx context.Context, msg Message) error {
	const query = `
INSERT INTO chat_messages (session_id, ts, role, content, pdf_id)
VALUES ($1, $2, $3, $4, $5)`

	var pdfID sql.NullString
	if msg.PDFID != "" {
		pdfID = sql.NullString{String: msg.PDFID, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query, msg.SessionID, msg.Timestamp, msg.Role, msg.Content, pdfID)
	return err
}

func (r *PGRepo) Query(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = HistoryPageSize
	}
	const query = `
SELECT session_id, ts, role, content, pdf_id
FROM chat_messages
WHERE session_id = $1
ORDER BY ts ASC
LIMIT $2`

	return r.list(ctx, query, sessionID, limit)
}

func (r *PGRepo) Latest(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = HistoryPageSize
	}
	const query = `
SELECT session_id, ts, role, content, pdf_id
FROM (
    SELECT session_id, ts, role, content, pdf_id
    FROM chat_messages
    WHERE session_id = $1
    ORDER BY ts DESC
    LIMIT $2
) latest
ORDER BY ts ASC`

	return r.list(ctx, query, sessionID, limit)
}

func (r *PGRepo) list(ctx context.Context, query, sessionID string, limit int) ([]Message, error) {
	rows, err := r.DB.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Message{}
	for rows.Next() {
		var msg Message
		var pdfID sql.NullString
		if err := rows.Scan(&msg.SessionID, &msg.Timestamp, &msg.Role, &msg.Content, &pdfID); err != nil {
			return nil, err
		}
		if pdfID.Valid {
			msg.PDFID = pdfID.String
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

func (r *PGRepo) Delete(ctx context.Context, sessionID, timestamp string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM chat_messages WHERE session_id = $1 AND ts = $2`, sessionID, timestamp)
	return err
}

var _ Repo = (*PGRepo)(nil)
