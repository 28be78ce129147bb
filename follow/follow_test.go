package follow_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/db/dbtest"
	"yatube/domain"
	"yatube/follow"
	"yatube/store"
)

// memRepo enforces pair uniqueness the way the database constraint does.
type memRepo struct {
	mu    sync.Mutex
	pairs map[domain.Follow]bool
}

func newMemRepo() *memRepo {
	return &memRepo{pairs: map[domain.Follow]bool{}}
}

func (r *memRepo) InsertFollow(_ context.Context, userID, authorID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := domain.Follow{UserID: userID, AuthorID: authorID}
	if r.pairs[key] {
		return domain.ErrDuplicate
	}
	r.pairs[key] = true
	return nil
}

func (r *memRepo) DeleteFollow(_ context.Context, userID, authorID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := domain.Follow{UserID: userID, AuthorID: authorID}
	if !r.pairs[key] {
		return domain.ErrNotFound
	}
	delete(r.pairs, key)
	return nil
}

func (r *memRepo) FollowExists(_ context.Context, userID, authorID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pairs[domain.Follow{UserID: userID, AuthorID: authorID}], nil
}

func (r *memRepo) CountFollowers(_ context.Context, authorID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for p := range r.pairs {
		if p.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) CountFollowing(_ context.Context, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for p := range r.pairs {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

func TestFollowIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	g := follow.NewGraph(repo)

	require.NoError(t, g.Follow(ctx, 1, 2))
	require.NoError(t, g.Follow(ctx, 1, 2))
	assert.Len(t, repo.pairs, 1)

	ok, err := g.IsFollowing(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSelfFollowStoresNothing(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	g := follow.NewGraph(repo)

	require.NoError(t, g.Follow(ctx, 1, 1))
	assert.Empty(t, repo.pairs)

	ok, err := g.IsFollowing(ctx, 1, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnfollowRequiresExistingPair(t *testing.T) {
	ctx := context.Background()
	g := follow.NewGraph(newMemRepo())

	assert.ErrorIs(t, g.Unfollow(ctx, 1, 2), domain.ErrNotFound)

	require.NoError(t, g.Follow(ctx, 1, 2))
	require.NoError(t, g.Unfollow(ctx, 1, 2))

	ok, err := g.IsFollowing(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConcurrentFollowAgainstDatabase(t *testing.T) {
	ctx := context.Background()
	s := store.New(dbtest.Open(t))
	alice := domain.User{Username: "alice"}
	require.NoError(t, s.CreateUser(ctx, &alice, []byte("x")))
	bob := domain.User{Username: "bob"}
	require.NoError(t, s.CreateUser(ctx, &bob, []byte("x")))

	g := follow.NewGraph(s)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, g.Follow(ctx, alice.ID, bob.ID))
		}()
	}
	wg.Wait()

	counts, err := g.Counts(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, follow.Counts{Followers: 1, Following: 0}, counts)
}
