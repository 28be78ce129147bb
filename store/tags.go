package store

import (
	"context"
	"database/sql"
	"fmt"

	"yatube/domain"
)

func (s *Store) GetTagBySlug(ctx context.Context, slug string) (domain.Tag, error) {
	var t domain.Tag
	err := s.db.QueryRowContext(ctx, "SELECT id, name, slug FROM tags WHERE slug = ?", slug).Scan(&t.ID, &t.Name, &t.Slug)
	if err != nil {
		return domain.Tag{}, notFound(err)
	}
	return t, nil
}

// setTags replaces the tag set of a post, creating missing tags by slug.
func setTags(ctx context.Context, tx *sql.Tx, postID int64, tags []domain.Tag) ([]domain.Tag, error) {
	if _, err := tx.ExecContext(ctx, "DELETE FROM post_tags WHERE post_id = ?", postID); err != nil {
		return nil, fmt.Errorf("error clearing post tags: %w", err)
	}

	saved := make([]domain.Tag, 0, len(tags))
	for _, t := range tags {
		if t.Slug == "" {
			t.Slug = domain.Slugify(t.Name)
		}
		if t.Slug == "" {
			continue
		}
		err := tx.QueryRowContext(ctx, `INSERT INTO tags (name, slug) VALUES (?, ?)
			ON CONFLICT (slug) DO UPDATE SET slug = excluded.slug
			RETURNING id, name`, t.Name, t.Slug).Scan(&t.ID, &t.Name)
		if err != nil {
			return nil, fmt.Errorf("error saving tag %q: %w", t.Slug, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO post_tags (post_id, tag_id) VALUES (?, ?)", postID, t.ID); err != nil {
			return nil, fmt.Errorf("error tagging post: %w", err)
		}
		saved = append(saved, t)
	}
	return saved, nil
}

func (s *Store) loadTags(ctx context.Context, posts []domain.Post) error {
	if len(posts) == 0 {
		return nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT pt.post_id, t.id, t.name, t.slug FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (`+placeholders(len(posts))+`)
		ORDER BY t.name`, postIDs(posts)...)
	if err != nil {
		return fmt.Errorf("error loading tags: %w", err)
	}
	defer rows.Close()

	byPost := map[int64][]domain.Tag{}
	for rows.Next() {
		var (
			postID int64
			t      domain.Tag
		)
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug); err != nil {
			return err
		}
		byPost[postID] = append(byPost[postID], t)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := range posts {
		posts[i].Tags = byPost[posts[i].ID]
	}
	return nil
}
