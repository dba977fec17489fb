package chats

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]map[string]Message // sessionId -> timestamp -> message
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]map[string]Message)}
}

func (r *MemoryRepo) Append(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.data[msg.SessionID]
	if !ok {
		session = make(map[string]Message)
		r.data[msg.SessionID] = session
	}
	session[msg.Timestamp] = msg
	return nil
}

func (r *MemoryRepo) Query(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	out, err := r.sorted(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) Latest(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	out, err := r.sorted(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *MemoryRepo) sorted(ctx context.Context, sessionID string) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Message, 0, len(r.data[sessionID]))
	for _, msg := range r.data[sessionID] {
		out = append(out, msg)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, sessionID, timestamp string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.data[sessionID]; ok {
		delete(session, timestamp)
		if len(session) == 0 {
			delete(r.data, sessionID)
		}
	}
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
