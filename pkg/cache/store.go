package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// DetailTTL is the time-to-live for resolved detail records.
	// The upstream catalog is read-only, so staleness within this window
	// is an accepted trade-off.
	DetailTTL = 24 * time.Hour
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache.
	ErrCacheMiss = errors.New("cache miss")
)

// Key identifies a cached resolved record.
type Key struct {
	// Collection is the target collection name (e.g. "people", "planets").
	Collection string

	// ID is the numeric record id within the collection.
	ID int
}

// String renders the key in the canonical {collection}/{id} format.
func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Collection, k.ID)
}

// Store is the shared key/value store backing the resolution engine.
//
// Get returns ErrCacheMiss when the key is absent or expired; a miss is a
// normal outcome, not a failure. Set and Delete are best-effort: callers
// must not abort resolution when either fails. Concurrent Sets to the same
// key have last-writer-wins semantics.
type Store interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Set(ctx context.Context, key Key, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key Key) error
}
