package documents

// RecordResponse is the outward-facing representation of a record. It never
// carries the extracted text.
type RecordResponse struct {
	ID                string   `json:"id"`
	FileName          string   `json:"fileName"`
	OriginalName      string   `json:"originalName"`
	FileSize          int64    `json:"fileSize"`
	FileSizeFormatted string   `json:"fileSizeFormatted"`
	UploadedAt        string   `json:"uploadedAt"`
	URL               string   `json:"url"`
	Analysis          Analysis `json:"analysis"`
}

type ListResponse struct {
	Total int              `json:"total"`
	Files []RecordResponse `json:"files"`
}

type SearchResponse struct {
	Query   string           `json:"query"`
	Total   int              `json:"total"`
	Results []RecordResponse `json:"results"`
}

type uploadURLRequest struct {
	OriginalName string `json:"originalName"`
	ContentType  string `json:"contentType"`
}

type confirmUploadRequest struct {
	FileName     string `json:"fileName"`
	OriginalName string `json:"originalName"`
	FileSize     int64  `json:"fileSize"`
}

func toResponse(rec Record) RecordResponse {
	return RecordResponse{
		ID:                rec.ID,
		FileName:          rec.FileName,
		OriginalName:      rec.OriginalName,
		FileSize:          rec.FileSize,
		FileSizeFormatted: rec.FileSizeFormatted,
		UploadedAt:        rec.UploadedAt,
		URL:               rec.URL,
		Analysis:          rec.Analysis,
	}
}

func toResponses(recs []Record) []RecordResponse {
	out := make([]RecordResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toResponse(rec))
	}
	return out
}
