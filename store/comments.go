package store

import (
	"context"
	"fmt"

	"yatube/domain"
)

func (s *Store) CreateComment(ctx context.Context, c *domain.Comment) error {
	c.CreatedAt = s.timestamp()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO comments (post_id, author_id, text, created_at) VALUES (?, ?, ?, ?)",
		c.PostID, c.AuthorID, c.Text, c.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("error inserting comment: %w", err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

// ListComments returns the comments of a post, newest first.
func (s *Store) ListComments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT c.id, c.post_id, c.author_id, u.username, c.text, c.created_at
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.post_id = ?
		ORDER BY c.created_at DESC, c.id DESC`, postID)
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		var (
			c       domain.Comment
			created int64
		)
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Author, &c.Text, &created); err != nil {
			return nil, err
		}
		c.CreatedAt = fromNanos(created)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
