package documents

import "context"

// Repo persists document records keyed by ID.
type Repo interface {
	Put(ctx context.Context, rec Record) error
	// Get returns ErrNotFound when no record has id.
	Get(ctx context.Context, id string) (Record, error)
	// Update replaces an existing record and returns ErrNotFound when it is
	// gone, so a concurrent delete is never undone.
	Update(ctx context.Context, rec Record) error
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id string) error
	// Scan returns every record in no particular order.
	Scan(ctx context.Context) ([]Record, error)
}
