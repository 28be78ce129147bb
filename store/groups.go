package store

import (
	"context"
	"database/sql"
	"fmt"

	"yatube/domain"
)

// EnsureGroup creates the group or refreshes its title and description
// when the slug is already taken.
func (s *Store) EnsureGroup(ctx context.Context, g *domain.Group) error {
	err := s.db.QueryRowContext(ctx, `INSERT INTO post_groups (title, slug, description) VALUES (?, ?, ?)
		ON CONFLICT (slug) DO UPDATE SET title = excluded.title, description = excluded.description
		RETURNING id`, g.Title, g.Slug, g.Description).Scan(&g.ID)
	if err != nil {
		return fmt.Errorf("error saving group %q: %w", g.Slug, err)
	}
	return nil
}

func (s *Store) GetGroupBySlug(ctx context.Context, slug string) (domain.Group, error) {
	return scanGroup(s.db.QueryRowContext(ctx,
		"SELECT id, title, slug, description FROM post_groups WHERE slug = ?", slug))
}

func (s *Store) GetGroupByID(ctx context.Context, id int64) (domain.Group, error) {
	return scanGroup(s.db.QueryRowContext(ctx,
		"SELECT id, title, slug, description FROM post_groups WHERE id = ?", id))
}

func (s *Store) ListGroups(ctx context.Context) ([]domain.Group, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, slug, description FROM post_groups ORDER BY title")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func scanGroup(row *sql.Row) (domain.Group, error) {
	var g domain.Group
	if err := row.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
		return domain.Group{}, notFound(err)
	}
	return g, nil
}
