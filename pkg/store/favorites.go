package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// Favorite bookmarks one catalog item per (user, collection type).
type Favorite struct {
	UserID  string    `json:"user_id"`
	Type    string    `json:"type"`
	ItemID  string    `json:"item_id"`
	Created time.Time `json:"created"`
}

func favoriteKey(userID, typ string) []byte {
	return []byte(prefixFavorite + userID + ":" + typ)
}

// AddFavorite stores a favorite. A user holds at most one favorite per
// collection type; a duplicate returns ErrExists.
func (s *Store) AddFavorite(_ context.Context, fav *Favorite) error {
	fav.Created = time.Now().UTC()

	data, err := json.Marshal(fav)
	if err != nil {
		return fmt.Errorf("marshal favorite: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := favoriteKey(fav.UserID, fav.Type)
		if _, err := txn.Get(key); err == nil {
			return ErrExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check favorite: %w", err)
		}
		return txn.Set(key, data)
	})
}

// GetFavorite fetches the user's favorite for a collection type.
func (s *Store) GetFavorite(_ context.Context, userID, typ string) (*Favorite, error) {
	var fav Favorite
	err := s.get(string(favoriteKey(userID, typ)), func(val []byte) error {
		return json.Unmarshal(val, &fav)
	})
	if err != nil {
		return nil, err
	}
	return &fav, nil
}

// ListFavorites returns all of the user's favorites.
func (s *Store) ListFavorites(_ context.Context, userID string) ([]Favorite, error) {
	var favorites []Favorite
	err := s.scanPrefix(prefixFavorite+userID+":", func(val []byte) error {
		var fav Favorite
		if err := json.Unmarshal(val, &fav); err != nil {
			return fmt.Errorf("unmarshal favorite: %w", err)
		}
		favorites = append(favorites, fav)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return favorites, nil
}

// DeleteFavorite removes the user's favorite for a collection type.
// Returns ErrNotFound if no such favorite exists.
func (s *Store) DeleteFavorite(_ context.Context, userID, typ string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := favoriteKey(userID, typ)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("check favorite: %w", err)
		}
		return txn.Delete(key)
	})
}
