package store

import (
	"context"
	"database/sql"
	"fmt"

	"yatube/domain"
)

// CreateUser inserts u with an already hashed password and fills in its
// id. A taken username yields domain.ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, u *domain.User, passwordHash []byte) error {
	u.CreatedAt = s.timestamp()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, email, password, created_at) VALUES (?, ?, ?, ?)",
		u.Username, u.Email, string(passwordHash), u.CreatedAt.UnixNano())
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("error inserting user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	return err
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		"SELECT id, username, email, created_at FROM users WHERE id = ?", id))
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		"SELECT id, username, email, created_at FROM users WHERE username = ?", username))
}

// Credentials returns the user together with the stored password hash.
func (s *Store) Credentials(ctx context.Context, username string) (domain.User, []byte, error) {
	var (
		u       domain.User
		email   sql.NullString
		created int64
		hash    string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, email, created_at, password FROM users WHERE username = ?", username).
		Scan(&u.ID, &u.Username, &email, &created, &hash)
	if err != nil {
		return domain.User{}, nil, notFound(err)
	}
	if email.Valid {
		u.Email = &email.String
	}
	u.CreatedAt = fromNanos(created)
	return u, []byte(hash), nil
}

func (s *Store) scanUser(row *sql.Row) (domain.User, error) {
	var (
		u       domain.User
		email   sql.NullString
		created int64
	)
	if err := row.Scan(&u.ID, &u.Username, &email, &created); err != nil {
		return domain.User{}, notFound(err)
	}
	if email.Valid {
		u.Email = &email.String
	}
	u.CreatedAt = fromNanos(created)
	return u, nil
}
