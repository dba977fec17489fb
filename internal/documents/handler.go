package documents

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"pdf-assistant-api/internal/shared/server/respond"
)

// FormField is the multipart field carrying the PDF.
const FormField = "pdf"

// multipart framing allowance on top of the file limit.
const multipartOverhead = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the /pdf group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.upload)
	rg.POST("/upload-url", h.uploadURL)
	rg.POST("/confirm-upload", h.confirmUpload)
	rg.DELETE("/delete/:fileName", h.delete)
	rg.GET("/url/:fileName", h.signedURL)
	rg.GET("/list", h.list)
	rg.GET("/detail/:id", h.detail)
	rg.GET("/search", h.search)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+multipartOverhead)
	if err := c.Request.ParseMultipartForm(MaxUploadBytes); err != nil {
		if isTooLarge(err) {
			respond.Error(c, http.StatusBadRequest, "file too large, max 10MB", "")
			return
		}
		respond.Error(c, http.StatusBadRequest, "invalid multipart form", err.Error())
		return
	}

	fileHeader, err := c.FormFile(FormField)
	if err != nil {
		if form := c.Request.MultipartForm; form != nil && len(form.File) > 0 {
			respond.Error(c, http.StatusBadRequest, `field name must be "pdf"`, "")
			return
		}
		respond.Error(c, http.StatusBadRequest, "PDF file not found", "")
		return
	}
	if fileHeader.Size > MaxUploadBytes {
		respond.Error(c, http.StatusBadRequest, "file too large, max 10MB", "")
		return
	}
	if !isPDF(fileHeader.Header.Get("Content-Type")) {
		respond.Error(c, http.StatusBadRequest, "only PDF files are allowed", "")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "unable to read file", err.Error())
		return
	}
	defer file.Close()

	rec, err := h.Svc.Upload(c.Request.Context(), UploadInput{
		OriginalName: fileHeader.Filename,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		Size:         fileHeader.Size,
		Body:         file,
	})
	if err != nil {
		fail(c, "Failed to upload PDF", err)
		return
	}
	respond.OK(c, "PDF uploaded and analyzed", toResponse(rec))
}

func (h *Handler) uploadURL(c *gin.Context) {
	var req uploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	ticket, err := h.Svc.PresignUpload(c.Request.Context(), req.OriginalName, req.ContentType)
	if err != nil {
		fail(c, "Failed to generate upload URL", err)
		return
	}
	respond.OK(c, "", ticket)
}

func (h *Handler) confirmUpload(c *gin.Context) {
	var req confirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	rec, err := h.Svc.ConfirmUpload(c.Request.Context(), ConfirmInput{
		FileName:     req.FileName,
		OriginalName: req.OriginalName,
		FileSize:     req.FileSize,
	})
	if err != nil {
		fail(c, "Failed to confirm upload", err)
		return
	}
	respond.OK(c, "PDF confirmed and analyzed", toResponse(rec))
}

func (h *Handler) delete(c *gin.Context) {
	deletion, err := h.Svc.Delete(c.Request.Context(), c.Param("fileName"))
	if err != nil {
		fail(c, "Failed to delete PDF", err)
		return
	}
	respond.OK(c, "PDF deleted", deletion)
}

func (h *Handler) signedURL(c *gin.Context) {
	expires, _ := strconv.Atoi(strings.TrimSpace(c.Query("expires")))
	url, err := h.Svc.SignedURL(c.Request.Context(), c.Param("fileName"), expires)
	if err != nil {
		fail(c, "Failed to generate URL", err)
		return
	}
	respond.OK(c, "", url)
}

func (h *Handler) list(c *gin.Context) {
	recs, err := h.Svc.List(c.Request.Context())
	if err != nil {
		fail(c, "Failed to list PDFs", err)
		return
	}
	respond.OK(c, "", ListResponse{Total: len(recs), Files: toResponses(recs)})
}

func (h *Handler) detail(c *gin.Context) {
	rec, err := h.Svc.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, "Failed to fetch PDF detail", err)
		return
	}
	respond.OK(c, "", toResponse(rec))
}

func (h *Handler) search(c *gin.Context) {
	query := NormalizeQuery(c.Query("q"))
	recs, err := h.Svc.Search(c.Request.Context(), query)
	if err != nil {
		fail(c, "Failed to search PDFs", err)
		return
	}
	respond.OK(c, "", SearchResponse{Query: query, Total: len(recs), Results: toResponses(recs)})
}

// fail maps service errors to envelopes: validation 400, unknown id 404,
// everything else 500 with the underlying message.
func fail(c *gin.Context, message string, err error) {
	var inputErr *InputError
	switch {
	case errors.As(err, &inputErr):
		respond.Error(c, http.StatusBadRequest, inputErr.Message, "")
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "PDF not found", "")
	default:
		respond.Error(c, http.StatusInternalServerError, message, err.Error())
	}
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
