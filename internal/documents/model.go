package documents

import (
	"fmt"
	"time"

	"pdf-assistant-api/internal/ai"
)

// TimeLayout is the fixed-width UTC layout used for uploadedAt so stored
// values sort lexically in time order.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Analysis is the AI summary stored with each record.
type Analysis = ai.Analysis

// Record is one uploaded PDF. ID and FileName both equal the object key.
type Record struct {
	ID                string   `json:"id" dynamodbav:"id"`
	FileName          string   `json:"fileName" dynamodbav:"fileName"`
	OriginalName      string   `json:"originalName" dynamodbav:"originalName"`
	FileSize          int64    `json:"fileSize" dynamodbav:"fileSize"`
	FileSizeFormatted string   `json:"fileSizeFormatted" dynamodbav:"fileSizeFormatted"`
	UploadedAt        string   `json:"uploadedAt" dynamodbav:"uploadedAt"`
	URL               string   `json:"url" dynamodbav:"url"`
	Analysis          Analysis `json:"analysis" dynamodbav:"analysis"`
	ExtractedText     string   `json:"extractedText,omitempty" dynamodbav:"extractedText,omitempty"`
}

// Public returns a copy without the extracted text.
func (r Record) Public() Record {
	r.ExtractedText = ""
	return r
}

// Digest is the compact form passed to the model when asking across documents.
func (r Record) Digest() ai.Digest {
	return ai.Digest{
		ID:           r.ID,
		OriginalName: r.OriginalName,
		Title:        r.Analysis.Title,
		Summary:      r.Analysis.Summary,
		Category:     r.Analysis.Category,
		Keywords:     r.Analysis.Keywords,
	}
}

// FormatSize renders bytes as kilobytes with two decimals, or "Unknown" for 0.
func FormatSize(size int64) string {
	if size <= 0 {
		return "Unknown"
	}
	return fmt.Sprintf("%.2f KB", float64(size)/1024)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
