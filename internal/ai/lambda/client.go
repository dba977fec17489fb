// Package lambda calls the serverless AI functions behind an HTTP API.
package lambda

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pdf-assistant-api/internal/ai"
)

const defaultTimeout = 5 * time.Minute

// Client implements ai.Gateway over the Lambda HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	guard      *ai.Guard
}

// New builds a client for baseURL. A zero timeout uses five minutes.
func New(baseURL string, timeout time.Duration, guard *ai.Guard) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("LAMBDA_API_URL is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if guard == nil {
		guard = ai.NewGuard("lambda", 0)
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		guard:      guard,
	}, nil
}

type analyzeRequest struct {
	FileName     string `json:"fileName"`
	OriginalName string `json:"originalName"`
}

type chatPDFRequest struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	SessionID string    `json:"sessionId,omitempty"`
	History   []ai.Turn `json:"history,omitempty"`
}

type chatRequest struct {
	Message   string    `json:"message"`
	SessionID string    `json:"sessionId,omitempty"`
	History   []ai.Turn `json:"history,omitempty"`
}

type askAllRequest struct {
	Question string `json:"question"`
}

type replyData struct {
	Reply             string `json:"reply"`
	Answer            string `json:"answer"`
	AnalyzedDocuments int    `json:"analyzedDocuments"`
}

func (c *Client) AnalyzeDocument(ctx context.Context, input ai.AnalyzeInput) (ai.AnalyzeResult, error) {
	data, err := c.post(ctx, "analyze", "/analyze-pdf", analyzeRequest{
		FileName:     input.FileName,
		OriginalName: input.OriginalName,
	})
	if err != nil {
		return ai.AnalyzeResult{}, err
	}
	return ai.ParseAnalysis(string(data))
}

func (c *Client) ChatDocument(ctx context.Context, input ai.DocumentChatInput) (ai.Reply, error) {
	return c.reply(ctx, "chat_document", "/chat-pdf", chatPDFRequest{
		ID:        input.DocumentID,
		Question:  input.Question,
		SessionID: input.SessionKey,
		History:   input.History,
	})
}

func (c *Client) Chat(ctx context.Context, input ai.ChatInput) (ai.Reply, error) {
	return c.reply(ctx, "chat", "/ai-chat", chatRequest{
		Message:   input.Message,
		SessionID: input.SessionKey,
		History:   input.History,
	})
}

// AskAll sends only the question; the function reads the library itself.
func (c *Client) AskAll(ctx context.Context, input ai.AskAllInput) (ai.Reply, error) {
	reply, err := c.reply(ctx, "ask_all", "/ask-all", askAllRequest{Question: input.Question})
	if err != nil {
		return ai.Reply{}, err
	}
	if reply.AnalyzedDocuments == 0 {
		reply.AnalyzedDocuments = len(input.Documents)
	}
	return reply, nil
}

func (c *Client) reply(ctx context.Context, operation, path string, body any) (ai.Reply, error) {
	data, err := c.post(ctx, operation, path, body)
	if err != nil {
		return ai.Reply{}, err
	}
	var parsed replyData
	if err := json.Unmarshal(data, &parsed); err != nil {
		return ai.Reply{}, fmt.Errorf("%w: decode %s reply: %v", ai.ErrUpstream, path, err)
	}
	text := parsed.Reply
	if text == "" {
		text = parsed.Answer
	}
	return ai.Reply{Text: text, AnalyzedDocuments: parsed.AnalyzedDocuments}, nil
}

func (c *Client) post(ctx context.Context, operation, path string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	var data json.RawMessage
	err = c.guard.Do(ctx, operation, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
				return fmt.Errorf("lambda %s timeout: %w", path, err)
			}
			return fmt.Errorf("lambda %s: %w", path, err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("lambda %s: read body: %w", path, err)
		}

		data, err = ai.DecodeEnvelope(raw)
		if err != nil {
			if resp.StatusCode >= 300 {
				return fmt.Errorf("lambda %s status %d: %w", path, resp.StatusCode, err)
			}
			return fmt.Errorf("lambda %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

var _ ai.Gateway = (*Client)(nil)
