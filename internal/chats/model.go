package chats

import (
	"errors"
	"sync"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// GeneralSession is used when a general chat carries no session id.
	GeneralSession = "general"
	// HistoryPageSize caps how many messages a history read returns.
	HistoryPageSize = 100
	// contextTurns is how many prior messages are sent to the model.
	contextTurns = 10
)

// TimestampLayout is RFC3339 with fixed nanosecond width so timestamps sort
// lexically, which is how DynamoDB orders the sort key.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNoDocuments  = errors.New("no documents uploaded")
)

// InputError is a validation failure whose message is safe to show clients.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func (e *InputError) Unwrap() error { return ErrInvalidInput }

func invalid(msg string) error {
	return &InputError{Message: msg}
}

// Message is one chat turn. SessionID and Timestamp form the key.
type Message struct {
	SessionID string `json:"sessionId" dynamodbav:"sessionId"`
	Timestamp string `json:"timestamp" dynamodbav:"timestamp"`
	Role      string `json:"role" dynamodbav:"role"`
	Content   string `json:"content" dynamodbav:"content"`
	PDFID     string `json:"pdfId,omitempty" dynamodbav:"pdfId,omitempty"`
}

// DocumentSessionKey is the history key for chats about one document.
func DocumentSessionKey(docID string) string {
	return "pdf#" + docID
}

// Clock issues strictly increasing timestamps within the process.
type Clock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewClock returns a Clock reading now, or the wall clock when now is nil.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Next returns a timestamp later than every one it returned before.
func (c *Clock) Next() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now().UTC()
	if !t.After(c.last) {
		t = c.last.Add(time.Nanosecond)
	}
	c.last = t
	return t.Format(TimestampLayout)
}
