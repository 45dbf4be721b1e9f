// Package store provides the badger-backed document store for gateway-owned
// data: user accounts, favorites, and comments. Catalog records are never
// persisted here; they live behind the cache package.
package store

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/holonet/swapi-gateway/pkg/logging"
)

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrExists indicates a unique constraint violation (duplicate username,
	// duplicate favorite).
	ErrExists = errors.New("document already exists")
)

// Key prefixes namespace the document types inside one badger keyspace.
const (
	prefixUser     = "user:"    // user:<username> -> User
	prefixUserID   = "uid:"     // uid:<id> -> username
	prefixFavorite = "fav:"     // fav:<userID>:<type> -> Favorite
	prefixComment  = "comment:" // comment:<id> -> Comment
)

// Store is the embedded document store.
type Store struct {
	db     *badger.DB
	logger zerolog.Logger
}

// Open opens the document store at path. An empty path opens an in-memory
// store, used in tests and for ephemeral deployments.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}

	return &Store{
		db:     db,
		logger: logging.NewLogger("store"),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// get loads and decodes one document into out via decode.
func (s *Store) get(key string, decode func([]byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		return item.Value(decode)
	})
}

// scanPrefix iterates all documents under prefix, handing each raw value to
// visit.
func (s *Store) scanPrefix(prefix string, visit func([]byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := it.Item().Value(visit); err != nil {
				return err
			}
		}
		return nil
	})
}
