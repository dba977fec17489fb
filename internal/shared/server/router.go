package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pdf-assistant-api/internal/chats"
	"pdf-assistant-api/internal/documents"
	"pdf-assistant-api/internal/services/health"
	"pdf-assistant-api/internal/shared/config"
	"pdf-assistant-api/internal/shared/metrics"
	"pdf-assistant-api/internal/shared/server/middleware"
	"pdf-assistant-api/internal/shared/server/respond"
	"pdf-assistant-api/internal/shared/storage/object"
	localstore "pdf-assistant-api/internal/shared/storage/object/local"
)

// Rate limit groups. AI calls are slow and billed, so they get a tighter budget.
const (
	groupDefault = "DEFAULT"
	groupAI      = "AI"
)

type RouterDeps struct {
	Config     config.Config
	Documents  *documents.Handler
	Chats      *chats.Handler
	Health     *health.Service
	LocalStore *localstore.Store
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	cfg := deps.Config
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: groupDefault,
			GroupFor:     rateLimitGroup,
			Rules: map[string]middleware.RateLimitRule{
				groupDefault: {Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst},
				groupAI:      {Rate: cfg.RateLimitRPS / 5, Burst: max(cfg.RateLimitBurst/5, 1)},
			},
		}),
	)

	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, deps.Health.Status(c.Request.Context()))
	})
	r.GET("/metrics", metrics.Handler())

	pdf := r.Group("/pdf")
	aiGroup := r.Group("/ai")
	if deps.Documents != nil {
		deps.Documents.RegisterRoutes(pdf)
	}
	if deps.Chats != nil {
		deps.Chats.RegisterRoutes(pdf, aiGroup)
	}
	if deps.LocalStore != nil {
		registerLocalObjects(r, deps.LocalStore, cfg.MaxUploadBytes)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "Route not found", "")
	})
	return r
}

func rateLimitGroup(c *gin.Context) string {
	path := c.FullPath()
	switch {
	case strings.HasPrefix(path, "/ai/") && c.Request.Method == http.MethodPost:
		return groupAI
	case path == "/pdf/chat/:id", path == "/pdf/upload", path == "/pdf/confirm-upload":
		return groupAI
	default:
		return groupDefault
	}
}

// registerLocalObjects serves presigned URLs minted by the local object store.
func registerLocalObjects(r *gin.Engine, store *localstore.Store, maxBytes int64) {
	prefix := strings.TrimSuffix(localstore.RoutePrefix, "/")
	if maxBytes <= 0 {
		maxBytes = documents.MaxUploadBytes
	}

	r.PUT(prefix+"/*key", func(c *gin.Context) {
		if store.Expired(c.Query("expires")) {
			respond.Error(c, http.StatusForbidden, "URL expired", "")
			return
		}
		body := http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		key := strings.TrimPrefix(c.Param("key"), "/")
		if _, err := store.Put(c.Request.Context(), key, c.ContentType(), body); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				respond.Error(c, http.StatusRequestEntityTooLarge, "file too large", "")
				return
			}
			respond.Error(c, http.StatusBadRequest, "upload failed", err.Error())
			return
		}
		c.Status(http.StatusOK)
	})

	r.GET(prefix+"/*key", func(c *gin.Context) {
		if store.Expired(c.Query("expires")) {
			respond.Error(c, http.StatusForbidden, "URL expired", "")
			return
		}
		rc, err := store.Open(c.Request.Context(), strings.TrimPrefix(c.Param("key"), "/"))
		if err != nil {
			if errors.Is(err, object.ErrNotFound) {
				respond.Error(c, http.StatusNotFound, "object not found", "")
				return
			}
			respond.Error(c, http.StatusBadRequest, "download failed", err.Error())
			return
		}
		defer rc.Close()
		c.DataFromReader(http.StatusOK, -1, documents.ContentTypePDF, rc, nil)
	})
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":3000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
