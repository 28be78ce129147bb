package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"yatube/domain"
)

// PostQuery narrows a post listing. Zero fields are ignored.
type PostQuery struct {
	GroupID    int64
	AuthorID   int64
	FollowerID int64
	TagID      int64
}

func (q PostQuery) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q.GroupID != 0 {
		conds = append(conds, "p.group_id = ?")
		args = append(args, q.GroupID)
	}
	if q.AuthorID != 0 {
		conds = append(conds, "p.author_id = ?")
		args = append(args, q.AuthorID)
	}
	if q.FollowerID != 0 {
		conds = append(conds, "p.author_id IN (SELECT author_id FROM follows WHERE user_id = ?)")
		args = append(args, q.FollowerID)
	}
	if q.TagID != 0 {
		conds = append(conds, "EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = p.id AND pt.tag_id = ?)")
		args = append(args, q.TagID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

const postColumns = `p.id, p.text, p.created_at, p.author_id, u.username, p.image, g.id, g.title, g.slug, g.description`

const postFrom = ` FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN post_groups g ON g.id = p.group_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner, extra ...any) (domain.Post, error) {
	var (
		p                  domain.Post
		created            int64
		groupID            sql.NullInt64
		title, slug, descr sql.NullString
	)
	dest := append([]any{&p.ID, &p.Text, &created, &p.AuthorID, &p.Author, &p.Image, &groupID, &title, &slug, &descr}, extra...)
	if err := row.Scan(dest...); err != nil {
		return domain.Post{}, err
	}
	p.CreatedAt = fromNanos(created)
	if groupID.Valid {
		p.Group = &domain.Group{ID: groupID.Int64, Title: title.String, Slug: slug.String, Description: descr.String}
	}
	return p, nil
}

func (s *Store) CountPosts(ctx context.Context, q PostQuery) (int, error) {
	where, args := q.where()
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts p"+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting posts: %w", err)
	}
	return n, nil
}

// ListPosts returns one slice of the newest-first listing with tags loaded.
func (s *Store) ListPosts(ctx context.Context, q PostQuery, limit, offset int) ([]domain.Post, error) {
	where, args := q.where()
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+postColumns+postFrom+where+" ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := s.loadTags(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Store) GetPost(ctx context.Context, id int64) (domain.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, "SELECT "+postColumns+postFrom+" WHERE p.id = ?", id))
	if err != nil {
		return domain.Post{}, notFound(err)
	}
	posts := []domain.Post{p}
	if err := s.loadTags(ctx, posts); err != nil {
		return domain.Post{}, err
	}
	return posts[0], nil
}

// CreatePost stores p, stamping its id and creation time.
func (s *Store) CreatePost(ctx context.Context, p *domain.Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error in begin transaction: %v", err)
	}
	defer tx.Rollback()

	p.CreatedAt = s.timestamp()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO posts (text, created_at, author_id, group_id, image) VALUES (?, ?, ?, ?, ?)",
		p.Text, p.CreatedAt.UnixNano(), p.AuthorID, groupRef(p.Group), p.Image)
	if err != nil {
		return fmt.Errorf("error inserting post: %w", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	if p.Tags, err = setTags(ctx, tx, p.ID, p.Tags); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error in commit transaction: %v", err)
	}
	return nil
}

// UpdatePost saves the editable fields of p: text, group, image and tags.
func (s *Store) UpdatePost(ctx context.Context, p *domain.Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error in begin transaction: %v", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "UPDATE posts SET text = ?, group_id = ?, image = ? WHERE id = ?",
		p.Text, groupRef(p.Group), p.Image, p.ID)
	if err != nil {
		return fmt.Errorf("error updating post: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return domain.ErrNotFound
	}
	if p.Tags, err = setTags(ctx, tx, p.ID, p.Tags); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error in commit transaction: %v", err)
	}
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("error deleting post: %w", err)
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

// SimilarPosts returns every other post sharing a tag with postID and the
// number of shared tags, in id order.
func (s *Store) SimilarPosts(ctx context.Context, postID int64) ([]domain.SimilarPost, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+postColumns+", COUNT(*)"+postFrom+`
		JOIN post_tags pt ON pt.post_id = p.id
		WHERE pt.tag_id IN (SELECT tag_id FROM post_tags WHERE post_id = ?) AND p.id <> ?
		GROUP BY p.id
		ORDER BY p.id`, postID, postID)
	if err != nil {
		return nil, fmt.Errorf("error querying similar posts: %w", err)
	}
	defer rows.Close()

	var similar []domain.SimilarPost
	for rows.Next() {
		var shared int
		p, err := scanPost(rows, &shared)
		if err != nil {
			return nil, err
		}
		similar = append(similar, domain.SimilarPost{Post: p, SharedTags: shared})
	}
	return similar, rows.Err()
}

func groupRef(g *domain.Group) any {
	if g == nil || g.ID == 0 {
		return nil
	}
	return g.ID
}

func postIDs(posts []domain.Post) []any {
	return lo.Map(posts, func(p domain.Post, _ int) any { return p.ID })
}
