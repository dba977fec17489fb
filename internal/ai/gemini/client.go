// Package gemini answers gateway calls directly with the Gemini API, reading
// documents from the object store and extracting their text locally.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"pdf-assistant-api/internal/ai"
	"pdf-assistant-api/internal/extract"
	"pdf-assistant-api/internal/shared/storage/object"
)

// MaxDocumentChars caps the document text placed in a prompt.
const MaxDocumentChars = 50000

type generator interface {
	generate(ctx context.Context, prompt string, jsonOutput bool) (string, error)
}

// Client implements ai.Gateway with Gemini.
type Client struct {
	gen   generator
	store object.ObjectStore
	guard *ai.Guard
	now   func() time.Time
	close func() error
}

// New connects to Gemini with apiKey.
func New(ctx context.Context, apiKey, model string, store object.ObjectStore, guard *ai.Guard) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	c := newClient(&genaiGenerator{client: client, model: model}, store, guard)
	c.close = client.Close
	return c, nil
}

func newClient(gen generator, store object.ObjectStore, guard *ai.Guard) *Client {
	if guard == nil {
		guard = ai.NewGuard("gemini", 0)
	}
	return &Client{
		gen:   gen,
		store: store,
		guard: guard,
		now:   time.Now,
		close: func() error { return nil },
	}
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.close()
}

func (c *Client) AnalyzeDocument(ctx context.Context, input ai.AnalyzeInput) (ai.AnalyzeResult, error) {
	doc, err := extract.FromStore(ctx, c.store, input.FileName)
	if err != nil {
		return ai.AnalyzeResult{}, err
	}
	text := extract.Truncate(doc.Text, MaxDocumentChars)
	if strings.TrimSpace(text) == "" {
		return ai.AnalyzeResult{}, fmt.Errorf("%w: no extractable text in %s", ai.ErrUnparseable, input.OriginalName)
	}

	raw, err := c.call(ctx, "analyze", analyzePrompt(input.OriginalName, text, doc.Pages), true)
	if err != nil {
		return ai.AnalyzeResult{}, err
	}
	res, err := ai.ParseAnalysis(raw)
	if err != nil {
		return ai.AnalyzeResult{}, err
	}
	res.Analysis.PageCount = doc.Pages
	res.Analysis.AnalyzedAt = c.now().UTC().Format(time.RFC3339)
	res.ExtractedText = text
	return res, nil
}

func (c *Client) ChatDocument(ctx context.Context, input ai.DocumentChatInput) (ai.Reply, error) {
	text := input.ExtractedText
	if strings.TrimSpace(text) == "" {
		doc, err := extract.FromStore(ctx, c.store, input.DocumentID)
		if err != nil {
			return ai.Reply{}, err
		}
		text = extract.Truncate(doc.Text, MaxDocumentChars)
	}
	out, err := c.call(ctx, "chat_document", chatDocumentPrompt(text, input.Question, input.History), false)
	if err != nil {
		return ai.Reply{}, err
	}
	return ai.Reply{Text: out}, nil
}

func (c *Client) Chat(ctx context.Context, input ai.ChatInput) (ai.Reply, error) {
	out, err := c.call(ctx, "chat", chatPrompt(input.Message, input.History), false)
	if err != nil {
		return ai.Reply{}, err
	}
	return ai.Reply{Text: out}, nil
}

func (c *Client) AskAll(ctx context.Context, input ai.AskAllInput) (ai.Reply, error) {
	out, err := c.call(ctx, "ask_all", askAllPrompt(input.Question, input.Documents), false)
	if err != nil {
		return ai.Reply{}, err
	}
	return ai.Reply{Text: out, AnalyzedDocuments: len(input.Documents)}, nil
}

func (c *Client) call(ctx context.Context, operation, prompt string, jsonOutput bool) (string, error) {
	var out string
	err := c.guard.Do(ctx, operation, func(ctx context.Context) error {
		text, err := c.gen.generate(ctx, prompt, jsonOutput)
		if err != nil {
			return fmt.Errorf("gemini %s: %w", operation, err)
		}
		out = strings.TrimSpace(text)
		if out == "" {
			return fmt.Errorf("%w: gemini %s returned no text", ai.ErrUpstream, operation)
		}
		return nil
	})
	return out, err
}

type genaiGenerator struct {
	client *genai.Client
	model  string
}

func (g *genaiGenerator) generate(ctx context.Context, prompt string, jsonOutput bool) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0.2)
	if jsonOutput {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		break
	}
	return b.String(), nil
}

var _ ai.Gateway = (*Client)(nil)
