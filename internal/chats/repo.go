package chats

import "context"

// Repo stores chat messages partitioned by session.
type Repo interface {
	Append(ctx context.Context, msg Message) error
	// Query returns up to limit messages of a session in ascending timestamp order.
	Query(ctx context.Context, sessionID string, limit int) ([]Message, error)
	// Latest returns the newest limit messages of a session, oldest first.
	Latest(ctx context.Context, sessionID string, limit int) ([]Message, error)
	Delete(ctx context.Context, sessionID, timestamp string) error
}
