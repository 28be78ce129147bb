package feed_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/db/dbtest"
	"yatube/domain"
	"yatube/feed"
	"yatube/paginate"
	"yatube/store"
)

type fixture struct {
	store *store.Store
	feed  *feed.Assembler
	alice domain.User
	bob   domain.User
	group domain.Group
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := store.New(dbtest.Open(t)).WithClock(func() time.Time {
		now = now.Add(time.Minute)
		return now
	})

	f := &fixture{store: s, feed: feed.NewAssembler(s, paginate.DefaultSize)}
	f.alice = domain.User{Username: "alice"}
	require.NoError(t, s.CreateUser(ctx, &f.alice, []byte("x")))
	f.bob = domain.User{Username: "bob"}
	require.NoError(t, s.CreateUser(ctx, &f.bob, []byte("x")))
	f.group = domain.Group{Title: "Cats", Slug: "cats"}
	require.NoError(t, s.EnsureGroup(ctx, &f.group))
	return f
}

func (f *fixture) post(t *testing.T, author domain.User, text string, group *domain.Group, tags string) domain.Post {
	t.Helper()
	p := domain.Post{Text: text, AuthorID: author.ID, Group: group, Tags: domain.ParseTags(tags)}
	require.NoError(t, f.store.CreatePost(context.Background(), &p))
	return p
}

func TestBuildAllPaginates(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 13; i++ {
		f.post(t, f.alice, fmt.Sprintf("post %d", i), nil, "")
	}

	first, err := f.feed.Build(context.Background(), feed.All(), feed.Request{})
	require.NoError(t, err)
	assert.Len(t, first.Page.Items, 10)
	assert.Equal(t, "post 12", first.Page.Items[0].Text)
	assert.Equal(t, 2, first.Page.TotalPages)

	second, err := f.feed.Build(context.Background(), feed.All(), feed.Request{Page: 2})
	require.NoError(t, err)
	assert.Len(t, second.Page.Items, 3)
	assert.Equal(t, "post 0", second.Page.Items[2].Text)

	clamped, err := f.feed.Build(context.Background(), feed.All(), feed.Request{Page: 99})
	require.NoError(t, err)
	assert.Equal(t, second.Page.Items, clamped.Page.Items)
}

func TestBuildByGroupAndAuthor(t *testing.T) {
	f := newFixture(t)
	f.post(t, f.alice, "in group", &f.group, "")
	f.post(t, f.bob, "no group", nil, "")

	byGroup, err := f.feed.Build(context.Background(), feed.ByGroup("cats"), feed.Request{})
	require.NoError(t, err)
	require.NotNil(t, byGroup.Group)
	assert.Equal(t, "Cats", byGroup.Group.Title)
	require.Len(t, byGroup.Page.Items, 1)
	assert.Equal(t, "in group", byGroup.Page.Items[0].Text)

	byAuthor, err := f.feed.Build(context.Background(), feed.ByAuthor("bob"), feed.Request{})
	require.NoError(t, err)
	assert.Equal(t, f.bob.ID, byAuthor.Author.ID)
	assert.Equal(t, 1, byAuthor.Page.Total)

	_, err = f.feed.Build(context.Background(), feed.ByGroup("dogs"), feed.Request{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.feed.Build(context.Background(), feed.ByAuthor("carol"), feed.Request{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBuildByFollows(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.post(t, f.bob, "bob 1", nil, "")
	f.post(t, f.alice, "alice 1", nil, "")
	f.post(t, f.bob, "bob 2", nil, "")

	empty, err := f.feed.Build(ctx, feed.ByFollows(f.alice.ID), feed.Request{})
	require.NoError(t, err)
	assert.Empty(t, empty.Page.Items)
	assert.Equal(t, 0, empty.Page.Total)

	require.NoError(t, f.store.InsertFollow(ctx, f.alice.ID, f.bob.ID))
	followed, err := f.feed.Build(ctx, feed.ByFollows(f.alice.ID), feed.Request{})
	require.NoError(t, err)
	require.Len(t, followed.Page.Items, 2)
	assert.Equal(t, "bob 2", followed.Page.Items[0].Text)
	assert.Equal(t, "bob 1", followed.Page.Items[1].Text)
}

func TestBuildByTag(t *testing.T) {
	f := newFixture(t)
	f.post(t, f.alice, "tagged", nil, "go")
	f.post(t, f.alice, "plain", nil, "")

	tagged, err := f.feed.Build(context.Background(), feed.ByTag("go"), feed.Request{})
	require.NoError(t, err)
	require.Len(t, tagged.Page.Items, 1)
	assert.Equal(t, "tagged", tagged.Page.Items[0].Text)
	assert.Equal(t, "go", tagged.Tag.Slug)

	_, err = f.feed.Build(context.Background(), feed.ByTag("rust"), feed.Request{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRelatedRanksBySharedTagsThenRecency(t *testing.T) {
	f := newFixture(t)
	p1 := f.post(t, f.alice, "P1", nil, "x, y")
	p2 := f.post(t, f.alice, "P2", nil, "x")
	p3 := f.post(t, f.bob, "P3", nil, "x, y")
	f.post(t, f.bob, "unrelated", nil, "z")

	p1, err := f.store.GetPost(context.Background(), p1.ID)
	require.NoError(t, err)

	related, err := f.feed.Related(context.Background(), p1)
	require.NoError(t, err)
	require.Len(t, related, 2)
	assert.Equal(t, p3.ID, related[0].ID)
	assert.Equal(t, p2.ID, related[1].ID)
}

func TestRelatedWithoutTags(t *testing.T) {
	f := newFixture(t)
	p := f.post(t, f.alice, "lonely", nil, "")
	f.post(t, f.alice, "other", nil, "x")

	related, err := f.feed.Related(context.Background(), p)
	require.NoError(t, err)
	assert.Empty(t, related)
}
