package domain

import (
	"time"
)

type Post struct {
	ID        int64
	Text      string
	CreatedAt time.Time
	AuthorID  int64
	Author    string
	Group     *Group
	Image     string
	Tags      []Tag
}

// Excerpt is the short label used in listings and share subjects.
func (p Post) Excerpt() string {
	r := []rune(p.Text)
	if len(r) <= 15 {
		return p.Text
	}
	return string(r[:15])
}

// SimilarPost is a candidate for the related posts block together with
// the number of tags it shares with the post being viewed.
type SimilarPost struct {
	Post       Post
	SharedTags int
}

type Group struct {
	ID          int64
	Title       string
	Slug        string
	Description string
}

type Comment struct {
	ID        int64
	PostID    int64
	AuthorID  int64
	Author    string
	Text      string
	CreatedAt time.Time
}
