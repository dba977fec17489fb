package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published on document lifecycle changes.
const (
	TypeDocumentUploaded = "document.uploaded"
	TypeDocumentDeleted  = "document.deleted"
)

const currentVersion = 1

// Message is the payload sent to downstream queue consumers.
type Message struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	DocumentID string `json:"documentId"`
	RequestID  string `json:"requestId,omitempty"`
	OccurredAt string `json:"occurredAt"`
	Version    int    `json:"version"`
}

// NewMessage stamps an event with a fresh id and the current schema version.
func NewMessage(eventType, documentID, requestID string, at time.Time) Message {
	return Message{
		ID:         uuid.NewString(),
		Type:       eventType,
		DocumentID: documentID,
		RequestID:  requestID,
		OccurredAt: at.UTC().Format(time.RFC3339),
		Version:    currentVersion,
	}
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
