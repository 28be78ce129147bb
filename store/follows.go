package store

import (
	"context"
	"fmt"

	"yatube/domain"
)

// InsertFollow stores the pair. The unique_follow constraint surfaces as
// domain.ErrDuplicate.
func (s *Store) InsertFollow(ctx context.Context, userID, authorID int64) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO follows (user_id, author_id) VALUES (?, ?)", userID, authorID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("error inserting follow: %w", err)
	}
	return nil
}

func (s *Store) DeleteFollow(ctx context.Context, userID, authorID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM follows WHERE user_id = ? AND author_id = ?", userID, authorID)
	if err != nil {
		return fmt.Errorf("error deleting follow: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) FollowExists(ctx context.Context, userID, authorID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM follows WHERE user_id = ? AND author_id = ?)", userID, authorID).Scan(&exists)
	return exists, err
}

func (s *Store) CountFollowers(ctx context.Context, authorID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM follows WHERE author_id = ?", authorID).Scan(&n)
	return n, err
}

func (s *Store) CountFollowing(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM follows WHERE user_id = ?", userID).Scan(&n)
	return n, err
}
