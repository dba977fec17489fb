// Package cache holds the read-through cache used for list, search and
// signed-URL lookups. Entries are JSON-encoded so the memory and Redis
// backends share one contract. The cache is never authoritative: any backend
// failure degrades to a miss.
package cache

import (
	"context"
	"time"
)

// TTL classes by use. Signed URLs stay under the 1h presign lifetime.
const (
	SignedURLTTL = 50 * time.Minute
	ListTTL      = 60 * time.Second
	SearchTTL    = 30 * time.Second
)

// Key namespaces.
const (
	ListPrefix   = "list:"
	SearchPrefix = "search:"
	URLPrefix    = "url:"
)

// Cache stores values with an absolute expiry and supports prefix invalidation.
type Cache interface {
	// Get decodes the value stored under key into dest and reports whether it
	// was present and unexpired.
	Get(ctx context.Context, key string, dest any) bool
	// Set stores value under key for ttl, replacing any previous entry.
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	// Invalidate removes every entry whose key starts with prefix.
	Invalidate(ctx context.Context, prefix string)
}

// ListKey is the key for the full document listing.
func ListKey() string { return ListPrefix + "all" }

// SearchKey is the key for a normalized search query.
func SearchKey(query string) string { return SearchPrefix + query }

// URLKey is the key for a file's signed download URL.
func URLKey(fileName string) string { return URLPrefix + fileName }

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string, any) bool           { return false }
func (Nop) Set(context.Context, string, any, time.Duration) {}
func (Nop) Invalidate(context.Context, string)              {}

var _ Cache = Nop{}
