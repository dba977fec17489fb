package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"pdf-assistant-api/internal/shared/storage/object"
)

const MimePDF = "application/pdf"

var ErrEmptyDocument = errors.New("empty pdf data")

// Result is the plain text of a PDF and its page count.
type Result struct {
	Text  string
	Pages int
}

// FromStore reads a stored object and extracts its text.
func FromStore(ctx context.Context, store object.ObjectStore, key string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	body, err := store.Open(ctx, key)
	if err != nil {
		return Result{}, fmt.Errorf("extract key=%s: %w", key, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return Result{}, fmt.Errorf("extract key=%s: read: %w", key, err)
	}

	res, err := PDF(ctx, raw)
	if err != nil {
		return Result{}, fmt.Errorf("extract key=%s: %w", key, err)
	}
	return res, nil
}

// PDF extracts per-page plain text joined by newlines.
// Pages whose content stream cannot be decoded are counted but contribute no text.
func PDF(ctx context.Context, data []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(data) == 0 {
		return Result{}, ErrEmptyDocument
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("open pdf: %w", err)
	}

	pages := reader.NumPage()
	texts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			texts = append(texts, text)
		}
	}

	return Result{Text: strings.Join(texts, "\n"), Pages: pages}, nil
}

// Truncate caps text at max runes.
func Truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
