package chats

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pdf-assistant-api/internal/documents"
	"pdf-assistant-api/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

type documentChatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"sessionId"`
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type askAllRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"sessionId"`
}

type documentHistory struct {
	PDFID    string    `json:"pdfId"`
	Messages []Message `json:"messages"`
}

type sessionHistory struct {
	SessionID string    `json:"sessionId"`
	Messages  []Message `json:"messages"`
}

// RegisterRoutes attaches PDF chat routes to the /pdf group and general chat
// routes to the /ai group.
func (h *Handler) RegisterRoutes(pdf, aiGroup *gin.RouterGroup) {
	pdf.POST("/chat/:id", h.chatDocument)
	pdf.GET("/history/:id", h.documentHistory)
	pdf.DELETE("/history/:id", h.clearDocumentHistory)

	aiGroup.POST("/chat", h.chat)
	aiGroup.POST("/ask-all", h.askAll)
	aiGroup.GET("/history", h.history)
	aiGroup.DELETE("/history", h.clearHistory)
}

func (h *Handler) chatDocument(c *gin.Context) {
	var req documentChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	reply, err := h.Svc.ChatWithDocument(c.Request.Context(), c.Param("id"), req.Question, req.SessionID)
	if err != nil {
		fail(c, "Failed to chat with PDF", err)
		return
	}
	respond.OK(c, "", reply)
}

func (h *Handler) documentHistory(c *gin.Context) {
	id := c.Param("id")
	msgs, err := h.Svc.History(c.Request.Context(), DocumentSessionKey(id))
	if err != nil {
		fail(c, "Failed to fetch chat history", err)
		return
	}
	respond.OK(c, "", documentHistory{PDFID: id, Messages: msgs})
}

func (h *Handler) clearDocumentHistory(c *gin.Context) {
	cleared, err := h.Svc.Clear(c.Request.Context(), DocumentSessionKey(c.Param("id")))
	if err != nil {
		fail(c, "Failed to clear chat history", err)
		return
	}
	respond.OK(c, "Chat history cleared", cleared)
}

func (h *Handler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	reply, err := h.Svc.Chat(c.Request.Context(), req.Message, req.SessionID)
	if err != nil {
		fail(c, "Failed to chat", err)
		return
	}
	respond.OK(c, "", reply)
}

func (h *Handler) askAll(c *gin.Context) {
	var req askAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	reply, err := h.Svc.AskAll(c.Request.Context(), req.Question, req.SessionID)
	if err != nil {
		fail(c, "Failed to ask across PDFs", err)
		return
	}
	respond.OK(c, "", reply)
}

func (h *Handler) history(c *gin.Context) {
	key := GeneralSessionKey(c.Query("sessionId"))
	msgs, err := h.Svc.History(c.Request.Context(), key)
	if err != nil {
		fail(c, "Failed to fetch chat history", err)
		return
	}
	respond.OK(c, "", sessionHistory{SessionID: key, Messages: msgs})
}

func (h *Handler) clearHistory(c *gin.Context) {
	cleared, err := h.Svc.Clear(c.Request.Context(), GeneralSessionKey(c.Query("sessionId")))
	if err != nil {
		fail(c, "Failed to clear chat history", err)
		return
	}
	respond.OK(c, "Chat history cleared", cleared)
}

func fail(c *gin.Context, message string, err error) {
	var inputErr *InputError
	var docErr *documents.InputError
	switch {
	case errors.As(err, &inputErr):
		respond.Error(c, http.StatusBadRequest, inputErr.Message, "")
	case errors.As(err, &docErr):
		respond.Error(c, http.StatusBadRequest, docErr.Message, "")
	case errors.Is(err, documents.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "PDF not found", "")
	case errors.Is(err, ErrNoDocuments):
		respond.Error(c, http.StatusNotFound, "No PDFs uploaded yet", "")
	default:
		respond.Error(c, http.StatusInternalServerError, message, err.Error())
	}
}
