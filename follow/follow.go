// Package follow manages who follows whom.
package follow

import (
	"context"
	"errors"

	"yatube/domain"
)

type Repository interface {
	InsertFollow(ctx context.Context, userID, authorID int64) error
	DeleteFollow(ctx context.Context, userID, authorID int64) error
	FollowExists(ctx context.Context, userID, authorID int64) (bool, error)
	CountFollowers(ctx context.Context, authorID int64) (int, error)
	CountFollowing(ctx context.Context, userID int64) (int, error)
}

type Graph struct {
	repo Repository
}

func NewGraph(repo Repository) *Graph {
	return &Graph{repo: repo}
}

// Follow records that follower follows author. Following yourself does
// nothing, and so does following someone twice.
func (g *Graph) Follow(ctx context.Context, follower, author int64) error {
	if follower == author {
		return nil
	}
	err := g.repo.InsertFollow(ctx, follower, author)
	if errors.Is(err, domain.ErrDuplicate) {
		return nil
	}
	return err
}

// Unfollow removes the pair and fails with domain.ErrNotFound when there
// was nothing to remove.
func (g *Graph) Unfollow(ctx context.Context, follower, author int64) error {
	return g.repo.DeleteFollow(ctx, follower, author)
}

func (g *Graph) IsFollowing(ctx context.Context, follower, author int64) (bool, error) {
	if follower == 0 || follower == author {
		return false, nil
	}
	return g.repo.FollowExists(ctx, follower, author)
}

type Counts struct {
	Followers int
	Following int
}

func (g *Graph) Counts(ctx context.Context, userID int64) (Counts, error) {
	followers, err := g.repo.CountFollowers(ctx, userID)
	if err != nil {
		return Counts{}, err
	}
	following, err := g.repo.CountFollowing(ctx, userID)
	if err != nil {
		return Counts{}, err
	}
	return Counts{Followers: followers, Following: following}, nil
}
