package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Comment is a user comment on one catalog item.
type Comment struct {
	ID       string     `json:"id"`
	Content  string     `json:"content"`
	ItemID   string     `json:"item_id"`
	ItemType string     `json:"item_type"`
	UserID   string     `json:"user_id"`
	Created  time.Time  `json:"created"`
	Updated  *time.Time `json:"updated,omitempty"`
}

// AddComment stores a new comment, assigning its ID and Created timestamp.
func (s *Store) AddComment(_ context.Context, comment *Comment) error {
	comment.ID = uuid.NewString()
	comment.Created = time.Now().UTC()
	comment.Updated = nil

	data, err := json.Marshal(comment)
	if err != nil {
		return fmt.Errorf("marshal comment: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefixComment+comment.ID), data)
	})
}

// GetComment fetches a comment by id. Returns ErrNotFound if absent.
func (s *Store) GetComment(_ context.Context, id string) (*Comment, error) {
	var comment Comment
	err := s.get(prefixComment+id, func(val []byte) error {
		return json.Unmarshal(val, &comment)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListCommentsByItem returns all comments for one catalog item. Ordering and
// pagination are applied by the caller.
func (s *Store) ListCommentsByItem(_ context.Context, itemID, itemType string) ([]Comment, error) {
	return s.listComments(func(c *Comment) bool {
		return c.ItemID == itemID && c.ItemType == itemType
	})
}

// ListCommentsByUser returns all comments written by one user.
func (s *Store) ListCommentsByUser(_ context.Context, userID string) ([]Comment, error) {
	return s.listComments(func(c *Comment) bool {
		return c.UserID == userID
	})
}

func (s *Store) listComments(match func(*Comment) bool) ([]Comment, error) {
	var comments []Comment
	err := s.scanPrefix(prefixComment, func(val []byte) error {
		var comment Comment
		if err := json.Unmarshal(val, &comment); err != nil {
			return fmt.Errorf("unmarshal comment: %w", err)
		}
		if match(&comment) {
			comments = append(comments, comment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// UpdateComment replaces a comment's content and stamps Updated. Only the
// author may update; a missing comment or a different author both return
// ErrNotFound so the API does not leak comment existence.
func (s *Store) UpdateComment(ctx context.Context, id, userID, content string) error {
	comment, err := s.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return ErrNotFound
	}

	now := time.Now().UTC()
	comment.Content = content
	comment.Updated = &now

	data, err := json.Marshal(comment)
	if err != nil {
		return fmt.Errorf("marshal comment: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefixComment+id), data)
	})
}

// DeleteComment removes a comment. Only the author may delete; a missing
// comment or a different author both return ErrNotFound.
func (s *Store) DeleteComment(ctx context.Context, id, userID string) error {
	comment, err := s.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return ErrNotFound
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(prefixComment + id))
	})
}
