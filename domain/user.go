package domain

import (
	"time"
)

type User struct {
	ID        int64
	Username  string
	Email     *string
	CreatedAt time.Time
}

type Follow struct {
	UserID   int64
	AuthorID int64
}
