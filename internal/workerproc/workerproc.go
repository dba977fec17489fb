// Package workerproc handles document lifecycle events consumed from the
// queue: uploads stored with a placeholder analysis are analyzed again and
// deleted documents lose their chat history.
package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"pdf-assistant-api/internal/chats"
	"pdf-assistant-api/internal/queue"
	"pdf-assistant-api/internal/shared/telemetry"
)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{BodyLen: 0, BodySHA: ""}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

// ErrMissingDocumentID indicates a message without a document id.
type ErrMissingDocumentID struct {
	Meta      MessageMeta
	RequestID string
}

func (e ErrMissingDocumentID) Error() string { return "missing document id" }

// ErrProcess indicates processing failed after successful parsing. These are
// the only failures worth redelivering.
type ErrProcess struct {
	DocumentID string
	RequestID  string
	Err        error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process event"
	}
	return "process event: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// Reanalyzer retries a placeholder analysis.
type Reanalyzer interface {
	Reanalyze(ctx context.Context, id string) (bool, error)
}

// HistoryClearer drops the chat history of a session.
type HistoryClearer interface {
	Clear(ctx context.Context, sessionKey string) (chats.Cleared, error)
}

// Processor applies decoded events to the services.
type Processor struct {
	Documents Reanalyzer
	Chats     HistoryClearer
}

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if strings.TrimSpace(msg.DocumentID) == "" {
		return msg, meta, ErrMissingDocumentID{Meta: meta, RequestID: msg.RequestID}
	}
	return msg, meta, nil
}

// HandleMessage parses and processes one payload. Unknown event types are
// acknowledged without action.
func (p Processor) HandleMessage(ctx context.Context, body string) error {
	msg, _, err := ParseMessage(body)
	if err != nil {
		return err
	}
	return p.Handle(ctx, msg)
}

// Handle processes an already decoded message.
func (p Processor) Handle(ctx context.Context, msg queue.Message) error {
	ctx = telemetry.WithRequestID(ctx, msg.RequestID)

	switch msg.Type {
	case queue.TypeDocumentUploaded:
		if p.Documents == nil {
			return ErrProcess{DocumentID: msg.DocumentID, RequestID: msg.RequestID, Err: fmt.Errorf("documents not configured")}
		}
		changed, err := p.Documents.Reanalyze(ctx, msg.DocumentID)
		if err != nil {
			return ErrProcess{DocumentID: msg.DocumentID, RequestID: msg.RequestID, Err: err}
		}
		telemetry.Info("worker.event.reanalyze", map[string]any{
			"request_id":  msg.RequestID,
			"document_id": msg.DocumentID,
			"changed":     changed,
		})
	case queue.TypeDocumentDeleted:
		if p.Chats == nil {
			return ErrProcess{DocumentID: msg.DocumentID, RequestID: msg.RequestID, Err: fmt.Errorf("chats not configured")}
		}
		cleared, err := p.Chats.Clear(ctx, chats.DocumentSessionKey(msg.DocumentID))
		if err != nil {
			return ErrProcess{DocumentID: msg.DocumentID, RequestID: msg.RequestID, Err: err}
		}
		telemetry.Info("worker.event.history_cleared", map[string]any{
			"request_id":  msg.RequestID,
			"document_id": msg.DocumentID,
			"deleted":     cleared.Deleted,
		})
	default:
		telemetry.Warn("worker.event.unknown_type", map[string]any{
			"request_id":  msg.RequestID,
			"document_id": msg.DocumentID,
			"type":        msg.Type,
		})
	}
	return nil
}
