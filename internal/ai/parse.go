package ai

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const placeholderSummary = "Failed to analyze document"

type wireAnalysis struct {
	Title         string          `json:"title"`
	Summary       string          `json:"summary"`
	Category      string          `json:"category"`
	Keywords      []string        `json:"keywords"`
	Language      string          `json:"language"`
	MainTopics    []string        `json:"mainTopics"`
	PageCount     json.RawMessage `json:"pageCount"`
	AnalyzedAt    string          `json:"analyzedAt"`
	ExtractedText string          `json:"_extractedText"`
}

// ParseAnalysis decodes untrusted model output. Code fences and any text around
// the outermost JSON object are ignored. A result without a title or summary
// is rejected.
func ParseAnalysis(raw string) (AnalyzeResult, error) {
	block, ok := jsonObject(raw)
	if !ok {
		return AnalyzeResult{}, fmt.Errorf("%w: no json object found", ErrUnparseable)
	}

	var wire wireAnalysis
	if err := json.Unmarshal([]byte(block), &wire); err != nil {
		return AnalyzeResult{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	if strings.TrimSpace(wire.Title) == "" && strings.TrimSpace(wire.Summary) == "" {
		return AnalyzeResult{}, fmt.Errorf("%w: missing title and summary", ErrUnparseable)
	}

	analysis := Analysis{
		Title:      strings.TrimSpace(wire.Title),
		Summary:    strings.TrimSpace(wire.Summary),
		Category:   orUnknown(wire.Category),
		Keywords:   nonNil(wire.Keywords),
		Language:   orUnknown(wire.Language),
		MainTopics: nonNil(wire.MainTopics),
		PageCount:  pageCount(wire.PageCount),
		AnalyzedAt: wire.AnalyzedAt,
	}
	return AnalyzeResult{Analysis: analysis, ExtractedText: wire.ExtractedText}, nil
}

// Placeholder is the analysis stored when the gateway could not produce one.
func Placeholder(originalName string, cause error) Analysis {
	a := Analysis{
		Title:      originalName,
		Summary:    placeholderSummary,
		Category:   "Unknown",
		Keywords:   []string{},
		Language:   "Unknown",
		MainTopics: []string{},
		PageCount:  0,
	}
	if cause != nil {
		a.Error = cause.Error()
	}
	return a
}

func jsonObject(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func pageCount(raw json.RawMessage) int {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return int(f)
	}
	return 0
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "Unknown"
	}
	return s
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
