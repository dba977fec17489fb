package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope is the response shape shared by the Lambda functions and this API.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// DecodeEnvelope unwraps body and returns its data payload. An unsuccessful or
// empty envelope becomes an ErrUpstream error carrying the upstream message.
func DecodeEnvelope(body []byte) (json.RawMessage, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", ErrUpstream, err)
	}
	if !env.Success {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, upstreamMessage(env))
	}
	data := strings.TrimSpace(string(env.Data))
	if data == "" || data == "null" {
		return nil, fmt.Errorf("%w: empty data", ErrUpstream)
	}
	return env.Data, nil
}

func upstreamMessage(env Envelope) string {
	switch {
	case env.Error != "" && env.Message != "":
		return env.Message + ": " + env.Error
	case env.Error != "":
		return env.Error
	case env.Message != "":
		return env.Message
	default:
		return "request failed"
	}
}
