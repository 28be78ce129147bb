package feed

import (
	"cmp"
	"context"
	"slices"

	"github.com/samber/lo"

	"yatube/domain"
)

// RelatedLimit caps the related posts block.
const RelatedLimit = 3

// Related lists up to RelatedLimit other posts sharing tags with post.
func (a *Assembler) Related(ctx context.Context, post domain.Post) ([]domain.Post, error) {
	if len(post.Tags) == 0 {
		return []domain.Post{}, nil
	}
	candidates, err := a.store.SimilarPosts(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return Rank(candidates, post.ID, RelatedLimit), nil
}

// Rank orders candidates by shared tag count, then by recency, both
// descending, and keeps the first limit. The sort is stable, so equal
// candidates keep their input order.
func Rank(candidates []domain.SimilarPost, exclude int64, limit int) []domain.Post {
	ranked := lo.Filter(candidates, func(c domain.SimilarPost, _ int) bool {
		return c.Post.ID != exclude && c.SharedTags > 0
	})
	slices.SortStableFunc(ranked, func(a, b domain.SimilarPost) int {
		if c := cmp.Compare(b.SharedTags, a.SharedTags); c != 0 {
			return c
		}
		return b.Post.CreatedAt.Compare(a.Post.CreatedAt)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return lo.Map(ranked, func(c domain.SimilarPost, _ int) domain.Post { return c.Post })
}
