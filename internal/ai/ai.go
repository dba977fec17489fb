// Package ai defines the gateway used to analyze documents and answer chat
// questions, plus the helpers shared by its providers.
package ai

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured is returned by every call on an Unconfigured gateway.
	ErrNotConfigured = errors.New("ai provider not configured")
	// ErrUpstream wraps a failure reported by the provider itself.
	ErrUpstream = errors.New("ai gateway error")
	// ErrUnparseable means the model output did not contain a usable analysis.
	ErrUnparseable = errors.New("unparseable analysis")
)

// Analysis is the structured summary of one document. The dynamodbav tags keep
// the stored item shape identical to the JSON shape.
type Analysis struct {
	Title      string   `json:"title" dynamodbav:"title"`
	Summary    string   `json:"summary" dynamodbav:"summary"`
	Category   string   `json:"category" dynamodbav:"category"`
	Keywords   []string `json:"keywords" dynamodbav:"keywords"`
	Language   string   `json:"language" dynamodbav:"language"`
	MainTopics []string `json:"mainTopics" dynamodbav:"mainTopics"`
	PageCount  int      `json:"pageCount" dynamodbav:"pageCount"`
	AnalyzedAt string   `json:"analyzedAt,omitempty" dynamodbav:"analyzedAt,omitempty"`
	Error      string   `json:"error,omitempty" dynamodbav:"error,omitempty"`
}

// AnalyzeResult carries the analysis and the text the provider extracted while
// producing it.
type AnalyzeResult struct {
	Analysis      Analysis
	ExtractedText string
}

type AnalyzeInput struct {
	FileName     string
	OriginalName string
}

// Turn is one prior message passed to the model as conversation context.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type DocumentChatInput struct {
	DocumentID    string
	Question      string
	SessionKey    string
	ExtractedText string
	History       []Turn
}

type ChatInput struct {
	Message    string
	SessionKey string
	History    []Turn
}

// Digest is the compact view of a document used when asking across the library.
type Digest struct {
	ID           string   `json:"id"`
	OriginalName string   `json:"originalName"`
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Category     string   `json:"category"`
	Keywords     []string `json:"keywords"`
}

type AskAllInput struct {
	Question   string
	SessionKey string
	Documents  []Digest
}

// Reply is a model answer. AnalyzedDocuments is only set by AskAll.
type Reply struct {
	Text              string
	AnalyzedDocuments int
}

// Gateway is the remote AI compute endpoint.
type Gateway interface {
	AnalyzeDocument(ctx context.Context, input AnalyzeInput) (AnalyzeResult, error)
	ChatDocument(ctx context.Context, input DocumentChatInput) (Reply, error)
	Chat(ctx context.Context, input ChatInput) (Reply, error)
	AskAll(ctx context.Context, input AskAllInput) (Reply, error)
}

// Unconfigured fails every call. Uploads still succeed with a placeholder analysis.
type Unconfigured struct{}

func (Unconfigured) AnalyzeDocument(context.Context, AnalyzeInput) (AnalyzeResult, error) {
	return AnalyzeResult{}, ErrNotConfigured
}

func (Unconfigured) ChatDocument(context.Context, DocumentChatInput) (Reply, error) {
	return Reply{}, ErrNotConfigured
}

func (Unconfigured) Chat(context.Context, ChatInput) (Reply, error) {
	return Reply{}, ErrNotConfigured
}

func (Unconfigured) AskAll(context.Context, AskAllInput) (Reply, error) {
	return Reply{}, ErrNotConfigured
}

var _ Gateway = Unconfigured{}
