package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"pdf-assistant-api/internal/ai"
	"pdf-assistant-api/internal/cache"
	"pdf-assistant-api/internal/queue"
	"pdf-assistant-api/internal/shared/metrics"
	"pdf-assistant-api/internal/shared/storage/object"
	"pdf-assistant-api/internal/shared/telemetry"
	"pdf-assistant-api/internal/shared/util"
)

const (
	ContentTypePDF = "application/pdf"
	MaxUploadBytes = 10 << 20

	DownloadURLTTL      = time.Hour
	UploadURLTTL        = 5 * time.Minute
	DefaultURLExpirySec = 3600
)

// Service runs the upload, delete and read pipelines over the object store,
// the record store, the AI gateway and the cache.
type Service struct {
	Store  object.ObjectStore
	Repo   Repo
	AI     ai.Gateway
	Cache  cache.Cache
	Events queue.Client
	Now    func() time.Time
}

type UploadInput struct {
	OriginalName string
	ContentType  string
	Size         int64
	Body         io.Reader
}

type ConfirmInput struct {
	FileName     string
	OriginalName string
	FileSize     int64
}

// UploadTicket is a presigned direct upload.
type UploadTicket struct {
	UploadURL string `json:"uploadUrl"`
	FileName  string `json:"fileName"`
	ExpiresIn int    `json:"expiresIn"`
}

type Deletion struct {
	FileName  string `json:"fileName"`
	DeletedAt string `json:"deletedAt"`
}

type SignedURL struct {
	FileName  string `json:"fileName"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expiresIn"`
}

// Upload validates, stores, analyzes and records a PDF. Analysis failure is
// recovered with a placeholder; every other failure aborts.
func (s *Service) Upload(ctx context.Context, in UploadInput) (Record, error) {
	name := strings.TrimSpace(in.OriginalName)
	if name == "" {
		return Record{}, invalid("PDF file not found")
	}
	if !isPDF(in.ContentType) {
		return Record{}, invalid("only PDF files are allowed")
	}
	if in.Size > MaxUploadBytes {
		return Record{}, invalid("file too large, max 10MB")
	}
	if in.Body == nil {
		return Record{}, invalid("PDF file not found")
	}

	key, err := s.objectKey(name)
	if err != nil {
		return Record{}, err
	}

	written, err := s.Store.Put(ctx, key, ContentTypePDF, in.Body)
	if err != nil {
		return Record{}, fmt.Errorf("store %s: %w", key, err)
	}
	size := in.Size
	if size <= 0 {
		size = written
	}

	rec, err := s.finish(ctx, key, name, size)
	if err != nil {
		return Record{}, err
	}
	metrics.IncUpload("direct")
	return rec, nil
}

// PresignUpload reserves a key and returns a short-lived URL the client PUTs to.
func (s *Service) PresignUpload(ctx context.Context, originalName, contentType string) (UploadTicket, error) {
	name := strings.TrimSpace(originalName)
	if name == "" {
		return UploadTicket{}, invalid("originalName is required")
	}
	if strings.TrimSpace(contentType) == "" {
		contentType = ContentTypePDF
	}
	if !isPDF(contentType) {
		return UploadTicket{}, invalid("only PDF files are allowed")
	}

	key, err := s.objectKey(name)
	if err != nil {
		return UploadTicket{}, err
	}
	url, err := s.Store.PresignPut(ctx, key, ContentTypePDF, UploadURLTTL)
	if err != nil {
		return UploadTicket{}, fmt.Errorf("presign upload %s: %w", key, err)
	}
	return UploadTicket{
		UploadURL: url,
		FileName:  key,
		ExpiresIn: int(UploadURLTTL / time.Second),
	}, nil
}

// ConfirmUpload records an object the client uploaded directly. The size is
// the client's claim; zero is reported as unknown.
func (s *Service) ConfirmUpload(ctx context.Context, in ConfirmInput) (Record, error) {
	fileName := strings.TrimSpace(in.FileName)
	originalName := strings.TrimSpace(in.OriginalName)
	if fileName == "" || originalName == "" {
		return Record{}, invalid("fileName and originalName are required")
	}
	if clean, err := util.SanitizeFileName(fileName); err != nil || clean != fileName {
		return Record{}, invalid("invalid fileName")
	}
	if in.FileSize < 0 {
		return Record{}, invalid("fileSize must not be negative")
	}

	rec, err := s.finish(ctx, fileName, originalName, in.FileSize)
	if err != nil {
		return Record{}, err
	}
	metrics.IncUpload("presigned")
	return rec, nil
}

// finish runs presign and analysis in parallel, then persists the record.
func (s *Service) finish(ctx context.Context, key, originalName string, size int64) (Record, error) {
	var (
		url         string
		result      ai.AnalyzeResult
		analysisErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.Store.PresignGet(gctx, key, DownloadURLTTL)
		if err != nil {
			return fmt.Errorf("presign download %s: %w", key, err)
		}
		url = u
		return nil
	})
	g.Go(func() error {
		result, analysisErr = s.AI.AnalyzeDocument(gctx, ai.AnalyzeInput{
			FileName:     key,
			OriginalName: originalName,
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return Record{}, err
	}

	analysis := result.Analysis
	if analysisErr == nil && analysis.Title == "" && analysis.Summary == "" {
		analysisErr = fmt.Errorf("%w: empty analysis", ai.ErrUpstream)
	}
	if analysisErr != nil {
		telemetry.Warn("document.analysis_failed", map[string]any{
			"request_id": telemetry.RequestID(ctx),
			"file_name":  key,
			"error":      analysisErr,
		})
		metrics.IncAnalysisFailed()
		analysis = ai.Placeholder(originalName, analysisErr)
		result.ExtractedText = ""
	}

	rec := Record{
		ID:                key,
		FileName:          key,
		OriginalName:      originalName,
		FileSize:          size,
		FileSizeFormatted: FormatSize(size),
		UploadedAt:        formatTime(s.now()),
		URL:               url,
		Analysis:          analysis,
		ExtractedText:     result.ExtractedText,
	}
	if err := s.Repo.Put(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("save record %s: %w", key, err)
	}

	s.Cache.Invalidate(ctx, cache.ListPrefix)
	s.Cache.Invalidate(ctx, cache.SearchPrefix)
	s.publish(ctx, queue.TypeDocumentUploaded, key)

	telemetry.Info("document.uploaded", map[string]any{
		"request_id": telemetry.RequestID(ctx),
		"file_name":  key,
		"size":       size,
		"page_count": analysis.PageCount,
	})
	return rec.Public(), nil
}

// Reanalyze retries analysis for a record stored with a placeholder. It
// reports whether the record changed. Records with a real analysis and
// records that no longer exist are left alone.
func (s *Service) Reanalyze(ctx context.Context, id string) (bool, error) {
	rec, err := s.Repo.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if rec.Analysis.Error == "" {
		return false, nil
	}

	result, err := s.AI.AnalyzeDocument(ctx, ai.AnalyzeInput{FileName: rec.FileName, OriginalName: rec.OriginalName})
	if err != nil {
		return false, fmt.Errorf("reanalyze %s: %w", rec.ID, err)
	}
	if result.Analysis.Title == "" && result.Analysis.Summary == "" {
		return false, fmt.Errorf("reanalyze %s: %w: empty analysis", rec.ID, ai.ErrUpstream)
	}

	rec.Analysis = result.Analysis
	rec.ExtractedText = result.ExtractedText
	if err := s.Repo.Update(ctx, rec); err != nil {
		if errors.Is(err, ErrNotFound) {
			telemetry.Info("document.reanalyze_skipped", map[string]any{
				"request_id": telemetry.RequestID(ctx),
				"file_name":  rec.FileName,
				"reason":     "deleted",
			})
			return false, nil
		}
		return false, fmt.Errorf("save record %s: %w", rec.ID, err)
	}
	s.Cache.Invalidate(ctx, cache.ListPrefix)
	s.Cache.Invalidate(ctx, cache.SearchPrefix)

	telemetry.Info("document.reanalyzed", map[string]any{
		"request_id": telemetry.RequestID(ctx),
		"file_name":  rec.FileName,
		"page_count": rec.Analysis.PageCount,
	})
	return true, nil
}

// Delete removes the object, then the record, then every cache entry that
// could still reference it. An object-store failure leaves the record intact.
func (s *Service) Delete(ctx context.Context, fileName string) (Deletion, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return Deletion{}, invalid("fileName is required")
	}

	if err := s.Store.Delete(ctx, fileName); err != nil {
		return Deletion{}, fmt.Errorf("delete object %s: %w", fileName, err)
	}
	if err := s.Repo.Delete(ctx, fileName); err != nil {
		telemetry.Error("document.delete_orphaned_record", map[string]any{
			"request_id": telemetry.RequestID(ctx),
			"file_name":  fileName,
			"error":      err,
		})
		return Deletion{}, fmt.Errorf("delete record %s: %w", fileName, err)
	}

	s.Cache.Invalidate(ctx, cache.ListPrefix)
	s.Cache.Invalidate(ctx, cache.SearchPrefix)
	s.Cache.Invalidate(ctx, cache.URLKey(fileName))
	s.publish(ctx, queue.TypeDocumentDeleted, fileName)
	metrics.IncDelete()

	return Deletion{FileName: fileName, DeletedAt: formatTime(s.now())}, nil
}

// List returns every record, newest first.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	var cached []Record
	if s.Cache.Get(ctx, cache.ListKey(), &cached) {
		return cached, nil
	}

	recs, err := s.Repo.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	out := publicSorted(recs)
	s.Cache.Set(ctx, cache.ListKey(), out, cache.ListTTL)
	return out, nil
}

// NormalizeQuery is the form of a search query used for matching and caching.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Search matches the query against name, title, summary, category and keywords.
// An empty query matches everything.
func (s *Service) Search(ctx context.Context, q string) ([]Record, error) {
	query := NormalizeQuery(q)
	key := cache.SearchKey(query)

	var cached []Record
	if s.Cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	recs, err := s.Repo.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	matched := make([]Record, 0, len(recs))
	for _, rec := range recs {
		if matches(rec, query) {
			matched = append(matched, rec)
		}
	}
	out := publicSorted(matched)
	s.Cache.Set(ctx, key, out, cache.SearchTTL)
	return out, nil
}

// Detail returns one record with a fresh download URL.
func (s *Service) Detail(ctx context.Context, id string) (Record, error) {
	rec, err := s.Lookup(ctx, id)
	if err != nil {
		return Record{}, err
	}
	url, _, err := s.downloadURL(ctx, rec.FileName, DownloadURLTTL)
	if err != nil {
		return Record{}, err
	}
	rec.URL = url
	return rec.Public(), nil
}

// Lookup returns the stored record including its extracted text.
func (s *Service) Lookup(ctx context.Context, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, invalid("id is required")
	}
	rec, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// SignedURL returns a download URL for fileName. expiresSec applies only when
// a new URL is minted; non-positive values use one hour. A cached URL is
// reported with its remaining lifetime.
func (s *Service) SignedURL(ctx context.Context, fileName string, expiresSec int) (SignedURL, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return SignedURL{}, invalid("fileName is required")
	}
	if expiresSec <= 0 {
		expiresSec = DefaultURLExpirySec
	}
	url, expiresIn, err := s.downloadURL(ctx, fileName, time.Duration(expiresSec)*time.Second)
	if err != nil {
		return SignedURL{}, err
	}
	return SignedURL{FileName: fileName, URL: url, ExpiresIn: expiresIn}, nil
}

// signedURLEntry is what the url: cache namespace holds.
type signedURLEntry struct {
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expiresAt"`
}

// urlCacheTTL keeps a cached URL well inside its signed lifetime.
func urlCacheTTL(ttl time.Duration) time.Duration {
	return min(ttl-ttl/6, cache.SignedURLTTL)
}

// downloadURL returns a cached or freshly signed URL and its remaining
// lifetime in seconds.
func (s *Service) downloadURL(ctx context.Context, fileName string, ttl time.Duration) (string, int, error) {
	now := s.now()
	key := cache.URLKey(fileName)
	var entry signedURLEntry
	if s.Cache.Get(ctx, key, &entry) && entry.URL != "" {
		if left := entry.ExpiresAt - now.Unix(); left > 0 {
			return entry.URL, int(left), nil
		}
	}
	url, err := s.Store.PresignGet(ctx, fileName, ttl)
	if err != nil {
		return "", 0, fmt.Errorf("presign download %s: %w", fileName, err)
	}
	if cacheTTL := urlCacheTTL(ttl); cacheTTL > 0 {
		s.Cache.Set(ctx, key, signedURLEntry{URL: url, ExpiresAt: now.Add(ttl).Unix()}, cacheTTL)
	}
	return url, int(ttl / time.Second), nil
}

func (s *Service) objectKey(originalName string) (string, error) {
	clean, err := util.SanitizeFileName(originalName)
	if err != nil {
		return "", invalid("invalid file name")
	}
	return fmt.Sprintf("%d-%s", s.now().UnixMilli(), clean), nil
}

func (s *Service) publish(ctx context.Context, eventType, fileName string) {
	if s.Events == nil {
		return
	}
	msg := queue.NewMessage(eventType, fileName, telemetry.RequestID(ctx), s.now())
	if err := s.Events.Send(ctx, msg); err != nil {
		telemetry.Warn("document.event_publish_failed", map[string]any{
			"request_id": msg.RequestID,
			"type":       eventType,
			"file_name":  fileName,
			"error":      err,
		})
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func isPDF(contentType string) bool {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	return mediaType == ContentTypePDF
}

func matches(rec Record, query string) bool {
	if query == "" {
		return true
	}
	text := strings.Join([]string{
		rec.OriginalName,
		rec.Analysis.Title,
		rec.Analysis.Summary,
		rec.Analysis.Category,
		strings.Join(rec.Analysis.Keywords, " "),
	}, " ")
	return strings.Contains(strings.ToLower(text), query)
}

func publicSorted(recs []Record) []Record {
	out := make([]Record, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.Public())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UploadedAt != out[j].UploadedAt {
			return out[i].UploadedAt > out[j].UploadedAt
		}
		return out[i].ID > out[j].ID
	})
	return out
}
