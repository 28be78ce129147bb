package feed_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"yatube/domain"
	"yatube/feed"
)

func candidate(id int64, shared int, created time.Time) domain.SimilarPost {
	return domain.SimilarPost{Post: domain.Post{ID: id, CreatedAt: created}, SharedTags: shared}
}

func ids(posts []domain.Post) []int64 {
	out := make([]int64, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestRank(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	got := feed.Rank([]domain.SimilarPost{
		candidate(2, 1, base.Add(1*time.Hour)),
		candidate(3, 2, base.Add(2*time.Hour)),
		candidate(4, 2, base.Add(3*time.Hour)),
		candidate(5, 1, base.Add(4*time.Hour)),
		candidate(1, 5, base),
	}, 1, feed.RelatedLimit)

	assert.Equal(t, []int64{4, 3, 5}, ids(got))
}

func TestRankIsStableOnFullTies(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	got := feed.Rank([]domain.SimilarPost{
		candidate(7, 1, at),
		candidate(3, 1, at),
		candidate(9, 1, at),
		candidate(4, 1, at),
	}, 0, feed.RelatedLimit)

	assert.Equal(t, []int64{7, 3, 9}, ids(got))
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, feed.Rank(nil, 1, feed.RelatedLimit))
}
