package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Put inserts or replaces a record.
func (r *PGRepo) Put(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO documents (
    id,
    file_name,
    original_name,
    file_size,
    file_size_formatted,
    uploaded_at,
    url,
    analysis,
    extracted_text
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
    file_name = EXCLUDED.file_name,
    original_name = EXCLUDED.original_name,
    file_size = EXCLUDED.file_size,
    file_size_formatted = EXCLUDED.file_size_formatted,
    uploaded_at = EXCLUDED.uploaded_at,
    url = EXCLUDED.url,
    analysis = EXCLUDED.analysis,
    extracted_text = EXCLUDED.extracted_text`

	analysis, err := json.Marshal(rec.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	var extracted sql.NullString
	if rec.ExtractedText != "" {
		extracted = sql.NullString{String: rec.ExtractedText, Valid: true}
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		rec.ID,
		rec.FileName,
		rec.OriginalName,
		rec.FileSize,
		rec.FileSizeFormatted,
		rec.UploadedAt,
		rec.URL,
		analysis,
		extracted,
	)
	return err
}

// Update rewrites the mutable columns of an existing record.
func (r *PGRepo) Update(ctx context.Context, rec Record) error {
	const query = `
UPDATE documents SET
    file_name = $2,
    original_name = $3,
    file_size = $4,
    file_size_formatted = $5,
    uploaded_at = $6,
    url = $7,
    analysis = $8,
    extracted_text = $9
WHERE id = $1`

	analysis, err := json.Marshal(rec.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	var extracted sql.NullString
	if rec.ExtractedText != "" {
		extracted = sql.NullString{String: rec.ExtractedText, Valid: true}
	}

	res, err := r.DB.ExecContext(
		ctx,
		query,
		rec.ID,
		rec.FileName,
		rec.OriginalName,
		rec.FileSize,
		rec.FileSizeFormatted,
		rec.UploadedAt,
		rec.URL,
		analysis,
		extracted,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const selectColumns = `id, file_name, original_name, file_size, file_size_formatted, uploaded_at, url, analysis, extracted_text`

// Get fetches a record by ID.
func (r *PGRepo) Get(ctx context.Context, id string) (Record, error) {
	query := `SELECT ` + selectColumns + ` FROM documents WHERE id = $1`
	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

// Delete removes a record by ID.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	return err
}

// Scan lists every record, newest first.
func (r *PGRepo) Scan(ctx context.Context) ([]Record, error) {
	query := `SELECT ` + selectColumns + ` FROM documents ORDER BY uploaded_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var analysis []byte
	var extracted sql.NullString
	if err := row.Scan(
		&rec.ID,
		&rec.FileName,
		&rec.OriginalName,
		&rec.FileSize,
		&rec.FileSizeFormatted,
		&rec.UploadedAt,
		&rec.URL,
		&analysis,
		&extracted,
	); err != nil {
		return Record{}, err
	}
	if len(analysis) > 0 {
		if err := json.Unmarshal(analysis, &rec.Analysis); err != nil {
			return Record{}, fmt.Errorf("decode analysis for %s: %w", rec.ID, err)
		}
	}
	if extracted.Valid {
		rec.ExtractedText = extracted.String
	}
	return rec, nil
}

var _ Repo = (*PGRepo)(nil)
