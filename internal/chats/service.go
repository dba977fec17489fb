package chats

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"pdf-assistant-api/internal/ai"
	"pdf-assistant-api/internal/documents"
	"pdf-assistant-api/internal/shared/telemetry"
)

// clearConcurrency bounds parallel deletes when clearing a session.
const clearConcurrency = 8

// Documents is the part of the document service chat needs.
type Documents interface {
	Lookup(ctx context.Context, id string) (documents.Record, error)
	List(ctx context.Context) ([]documents.Record, error)
}

// Service accumulates chat history around gateway calls.
type Service struct {
	Repo  Repo
	Docs  Documents
	AI    ai.Gateway
	Clock *Clock
}

type DocumentReply struct {
	Reply     string `json:"reply"`
	PDFID     string `json:"pdfId"`
	SessionID string `json:"sessionId"`
}

type ChatReply struct {
	Reply     string `json:"reply"`
	SessionID string `json:"sessionId"`
}

type AskAllReply struct {
	Question          string `json:"question"`
	Answer            string `json:"answer"`
	AnalyzedDocuments int    `json:"analyzedDocuments"`
	Timestamp         string `json:"timestamp"`
}

type Cleared struct {
	Deleted int `json:"deleted"`
}

// ChatWithDocument answers a question about one stored document.
func (s *Service) ChatWithDocument(ctx context.Context, docID, question, sessionID string) (DocumentReply, error) {
	docID = strings.TrimSpace(docID)
	question = strings.TrimSpace(question)
	sessionID = strings.TrimSpace(sessionID)
	if question == "" || sessionID == "" {
		return DocumentReply{}, invalid("question and sessionId are required")
	}
	rec, err := s.Docs.Lookup(ctx, docID)
	if err != nil {
		return DocumentReply{}, err
	}

	key := DocumentSessionKey(rec.ID)
	history, err := s.recent(ctx, key)
	if err != nil {
		return DocumentReply{}, err
	}
	if err := s.append(ctx, key, RoleUser, question, rec.ID); err != nil {
		return DocumentReply{}, err
	}

	reply, err := s.AI.ChatDocument(ctx, ai.DocumentChatInput{
		DocumentID:    rec.ID,
		Question:      question,
		SessionKey:    key,
		ExtractedText: rec.ExtractedText,
		History:       history,
	})
	if err != nil {
		return DocumentReply{}, fmt.Errorf("chat with document %s: %w", rec.ID, err)
	}
	if err := s.append(ctx, key, RoleAssistant, reply.Text, rec.ID); err != nil {
		return DocumentReply{}, err
	}

	telemetry.Info("chat.document", map[string]any{
		"request_id":  telemetry.RequestID(ctx),
		"pdf_id":      rec.ID,
		"session_key": key,
	})
	return DocumentReply{Reply: reply.Text, PDFID: rec.ID, SessionID: sessionID}, nil
}

// Chat is a general conversation not tied to a document.
func (s *Service) Chat(ctx context.Context, message, sessionID string) (ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return ChatReply{}, invalid("message is required")
	}
	key := GeneralSessionKey(sessionID)

	history, err := s.recent(ctx, key)
	if err != nil {
		return ChatReply{}, err
	}
	if err := s.append(ctx, key, RoleUser, message, ""); err != nil {
		return ChatReply{}, err
	}
	reply, err := s.AI.Chat(ctx, ai.ChatInput{Message: message, SessionKey: key, History: history})
	if err != nil {
		return ChatReply{}, fmt.Errorf("chat: %w", err)
	}
	if err := s.append(ctx, key, RoleAssistant, reply.Text, ""); err != nil {
		return ChatReply{}, err
	}
	return ChatReply{Reply: reply.Text, SessionID: key}, nil
}

// AskAll answers a question across every stored document.
func (s *Service) AskAll(ctx context.Context, question, sessionID string) (AskAllReply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return AskAllReply{}, invalid("question is required")
	}
	recs, err := s.Docs.List(ctx)
	if err != nil {
		return AskAllReply{}, err
	}
	if len(recs) == 0 {
		return AskAllReply{}, ErrNoDocuments
	}
	digests := make([]ai.Digest, 0, len(recs))
	for _, rec := range recs {
		digests = append(digests, rec.Digest())
	}

	key := GeneralSessionKey(sessionID)
	if err := s.append(ctx, key, RoleUser, question, ""); err != nil {
		return AskAllReply{}, err
	}
	reply, err := s.AI.AskAll(ctx, ai.AskAllInput{Question: question, SessionKey: key, Documents: digests})
	if err != nil {
		return AskAllReply{}, fmt.Errorf("ask all: %w", err)
	}
	ts := s.Clock.Next()
	if reply.Text != "" {
		if err := s.Repo.Append(ctx, Message{SessionID: key, Timestamp: ts, Role: RoleAssistant, Content: reply.Text}); err != nil {
			return AskAllReply{}, fmt.Errorf("append message: %w", err)
		}
	}

	analyzed := reply.AnalyzedDocuments
	if analyzed == 0 {
		analyzed = len(digests)
	}
	return AskAllReply{Question: question, Answer: reply.Text, AnalyzedDocuments: analyzed, Timestamp: ts}, nil
}

// History returns up to HistoryPageSize messages of a session, oldest first.
func (s *Service) History(ctx context.Context, sessionKey string) ([]Message, error) {
	msgs, err := s.Repo.Query(ctx, sessionKey, HistoryPageSize)
	if err != nil {
		return nil, fmt.Errorf("query history %s: %w", sessionKey, err)
	}
	return msgs, nil
}

// Clear deletes every message of a session, page by page, until a query
// comes back empty.
func (s *Service) Clear(ctx context.Context, sessionKey string) (Cleared, error) {
	total := 0
	for {
		msgs, err := s.Repo.Query(ctx, sessionKey, HistoryPageSize)
		if err != nil {
			return Cleared{Deleted: total}, fmt.Errorf("query history %s: %w", sessionKey, err)
		}
		if len(msgs) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(clearConcurrency)
		for _, msg := range msgs {
			msg := msg
			g.Go(func() error {
				return s.Repo.Delete(gctx, msg.SessionID, msg.Timestamp)
			})
		}
		if err := g.Wait(); err != nil {
			return Cleared{Deleted: total}, fmt.Errorf("clear history %s: %w", sessionKey, err)
		}
		total += len(msgs)
	}

	telemetry.Info("chat.history_cleared", map[string]any{"session_key": sessionKey, "deleted": total})
	return Cleared{Deleted: total}, nil
}

// GeneralSessionKey is the history key for general and ask-all chats.
func GeneralSessionKey(sessionID string) string {
	if id := strings.TrimSpace(sessionID); id != "" {
		return id
	}
	return GeneralSession
}

func (s *Service) append(ctx context.Context, key, role, content, pdfID string) error {
	if content == "" {
		return nil
	}
	msg := Message{SessionID: key, Timestamp: s.Clock.Next(), Role: role, Content: content, PDFID: pdfID}
	if err := s.Repo.Append(ctx, msg); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// recent returns the last contextTurns messages as model turns.
func (s *Service) recent(ctx context.Context, key string) ([]ai.Turn, error) {
	msgs, err := s.Repo.Latest(ctx, key, contextTurns)
	if err != nil {
		return nil, fmt.Errorf("query history %s: %w", key, err)
	}
	turns := make([]ai.Turn, 0, len(msgs))
	for _, msg := range msgs {
		turns = append(turns, ai.Turn{Role: msg.Role, Content: msg.Content})
	}
	return turns, nil
}
