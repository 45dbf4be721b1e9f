package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Created      time.Time `json:"created"`
}

// CreateUser registers a new user. The user's ID and Created timestamp are
// assigned here. Returns ErrExists when the username is taken.
func (s *Store) CreateUser(_ context.Context, user *User) error {
	if user.Username == "" {
		return fmt.Errorf("username is required")
	}
	user.ID = uuid.NewString()
	user.Created = time.Now().UTC()

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(prefixUser + user.Username)
		if _, err := txn.Get(key); err == nil {
			return ErrExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check username: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set user: %w", err)
		}
		return txn.Set([]byte(prefixUserID+user.ID), []byte(user.Username))
	})
}

// GetUser fetches a user by username. Returns ErrNotFound if absent.
func (s *Store) GetUser(_ context.Context, username string) (*User, error) {
	var user User
	err := s.get(prefixUser+username, func(val []byte) error {
		return json.Unmarshal(val, &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID fetches a user by id. Returns ErrNotFound if absent.
func (s *Store) GetUserByID(ctx context.Context, id string) (*User, error) {
	var username string
	err := s.get(prefixUserID+id, func(val []byte) error {
		username = string(val)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, username)
}

// DeleteUser removes a user and all of their favorites. The user's comments
// are kept; they still carry the author id.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	favorites, err := s.ListFavorites(ctx, id)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(prefixUser + user.Username)); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if err := txn.Delete([]byte(prefixUserID + id)); err != nil {
			return fmt.Errorf("delete user index: %w", err)
		}
		for _, fav := range favorites {
			if err := txn.Delete([]byte(prefixFavorite + id + ":" + fav.Type)); err != nil {
				return fmt.Errorf("delete favorite: %w", err)
			}
		}
		return nil
	})
}
