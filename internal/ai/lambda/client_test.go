package lambda

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-assistant-api/internal/ai"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/", 0, ai.NewGuard("test", 0))
	require.NoError(t, err)
	return c
}

func TestAnalyzeDocumentPostsFileNames(t *testing.T) {
	var got analyzeRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze-pdf", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true,"data":{"title":"Report","summary":"Q1","category":"Finance","keywords":["q1"],"language":"English","mainTopics":[],"pageCount":3,"_extractedText":"text"}}`))
	})

	res, err := c.AnalyzeDocument(context.Background(), ai.AnalyzeInput{FileName: "1-a.pdf", OriginalName: "a.pdf"})
	require.NoError(t, err)
	assert.Equal(t, analyzeRequest{FileName: "1-a.pdf", OriginalName: "a.pdf"}, got)
	assert.Equal(t, "Report", res.Analysis.Title)
	assert.Equal(t, 3, res.Analysis.PageCount)
	assert.Equal(t, "text", res.ExtractedText)
}

func TestUnsuccessfulEnvelopeIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Failed to process chat","error":"model overloaded"}`))
	})

	_, err := c.Chat(context.Background(), ai.ChatInput{Message: "hi"})
	require.ErrorIs(t, err, ai.ErrUpstream)
	assert.Contains(t, err.Error(), "model overloaded")
	assert.Contains(t, err.Error(), "status 500")
}

func TestChatDocumentReturnsReply(t *testing.T) {
	var got chatPDFRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat-pdf", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true,"data":{"reply":"It is about taxes."}}`))
	})

	reply, err := c.ChatDocument(context.Background(), ai.DocumentChatInput{
		DocumentID: "1-a.pdf",
		Question:   "What is it about?",
		SessionKey: "pdf#1-a.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "It is about taxes.", reply.Text)
	assert.Equal(t, "1-a.pdf", got.ID)
	assert.Equal(t, "pdf#1-a.pdf", got.SessionID)
}

func TestAskAllReadsAnswer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ask-all", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"data":{"question":"q","answer":"two invoices","analyzedDocuments":2}}`))
	})

	reply, err := c.AskAll(context.Background(), ai.AskAllInput{Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, "two invoices", reply.Text)
	assert.Equal(t, 2, reply.AnalyzedDocuments)
}

func TestNewRequiresURL(t *testing.T) {
	_, err := New("  ", 0, nil)
	assert.Error(t, err)
}
