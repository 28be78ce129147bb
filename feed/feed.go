// Package feed assembles paginated post listings and the related posts
// block of the post page.
package feed

import (
	"context"
	"fmt"

	"yatube/domain"
	"yatube/paginate"
	"yatube/store"
)

type Kind int

const (
	KindAll Kind = iota
	KindGroup
	KindAuthor
	KindFollows
	KindTag
)

// Filter selects which posts a feed lists.
type Filter struct {
	Kind     Kind
	Slug     string
	Username string
	UserID   int64
}

func All() Filter                     { return Filter{Kind: KindAll} }
func ByGroup(slug string) Filter      { return Filter{Kind: KindGroup, Slug: slug} }
func ByAuthor(username string) Filter { return Filter{Kind: KindAuthor, Username: username} }
func ByFollows(userID int64) Filter   { return Filter{Kind: KindFollows, UserID: userID} }
func ByTag(slug string) Filter        { return Filter{Kind: KindTag, Slug: slug} }

// Request carries what the handler knows about the incoming request.
type Request struct {
	Viewer *domain.User
	Page   int
}

// Feed is one page of posts plus the subject it was filtered by.
type Feed struct {
	Page   paginate.Page[domain.Post]
	Group  *domain.Group
	Author *domain.User
	Tag    *domain.Tag
}

type Store interface {
	CountPosts(ctx context.Context, q store.PostQuery) (int, error)
	ListPosts(ctx context.Context, q store.PostQuery, limit, offset int) ([]domain.Post, error)
	GetGroupBySlug(ctx context.Context, slug string) (domain.Group, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetTagBySlug(ctx context.Context, slug string) (domain.Tag, error)
	SimilarPosts(ctx context.Context, postID int64) ([]domain.SimilarPost, error)
}

type Assembler struct {
	store    Store
	pageSize int
}

func NewAssembler(s Store, pageSize int) *Assembler {
	if pageSize < 1 {
		pageSize = paginate.DefaultSize
	}
	return &Assembler{store: s, pageSize: pageSize}
}

// Build returns the requested page of the feed. Unknown groups, authors
// and tags yield domain.ErrNotFound.
func (a *Assembler) Build(ctx context.Context, f Filter, req Request) (Feed, error) {
	var (
		feed Feed
		q    store.PostQuery
	)

	switch f.Kind {
	case KindAll:
	case KindGroup:
		g, err := a.store.GetGroupBySlug(ctx, f.Slug)
		if err != nil {
			return Feed{}, fmt.Errorf("group %q: %w", f.Slug, err)
		}
		feed.Group = &g
		q.GroupID = g.ID
	case KindAuthor:
		u, err := a.store.GetUserByUsername(ctx, f.Username)
		if err != nil {
			return Feed{}, fmt.Errorf("author %q: %w", f.Username, err)
		}
		feed.Author = &u
		q.AuthorID = u.ID
	case KindTag:
		t, err := a.store.GetTagBySlug(ctx, f.Slug)
		if err != nil {
			return Feed{}, fmt.Errorf("tag %q: %w", f.Slug, err)
		}
		feed.Tag = &t
		q.TagID = t.ID
	case KindFollows:
		if f.UserID == 0 {
			feed.Page = paginate.Paginate([]domain.Post{}, a.pageSize, req.Page)
			return feed, nil
		}
		q.FollowerID = f.UserID
	default:
		return Feed{}, fmt.Errorf("unknown feed kind %d", f.Kind)
	}

	total, err := a.store.CountPosts(ctx, q)
	if err != nil {
		return Feed{}, err
	}
	feed.Page = paginate.Window[domain.Post](total, a.pageSize, req.Page)
	feed.Page.Items = []domain.Post{}
	if total == 0 {
		return feed, nil
	}

	posts, err := a.store.ListPosts(ctx, q, feed.Page.Size, feed.Page.Offset())
	if err != nil {
		return Feed{}, err
	}
	feed.Page.Items = posts
	return feed, nil
}
