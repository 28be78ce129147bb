package paginate_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/paginate"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginateCoversInput(t *testing.T) {
	for size := 1; size <= 12; size++ {
		for n := 0; n <= 35; n++ {
			items := seq(n)
			first := paginate.Paginate(items, size, 1)
			wantPages := (n + size - 1) / size
			require.Equal(t, wantPages, first.TotalPages, "size=%d n=%d", size, n)

			var joined []int
			for number := 1; number <= first.TotalPages; number++ {
				page := paginate.Paginate(items, size, number)
				require.Equal(t, number, page.Number)
				require.LessOrEqual(t, len(page.Items), size)
				joined = append(joined, page.Items...)
			}
			if n == 0 {
				assert.Empty(t, joined)
				continue
			}
			assert.Equal(t, items, joined, "size=%d n=%d", size, n)
		}
	}
}

func TestPaginateClampsToLastPage(t *testing.T) {
	items := seq(23)

	for _, requested := range []int{3, 4, 100} {
		page := paginate.Paginate(items, 10, requested)
		assert.Equal(t, 3, page.Number)
		assert.Equal(t, []int{20, 21, 22}, page.Items)
		assert.False(t, page.HasNext())
		assert.True(t, page.HasPrev())
	}
}

func TestPaginateDefaultsToFirstPage(t *testing.T) {
	page := paginate.Paginate(seq(13), paginate.DefaultSize, 0)

	assert.Equal(t, 1, page.Number)
	assert.Len(t, page.Items, 10)
	assert.True(t, page.HasNext())
	assert.False(t, page.HasPrev())
	assert.Equal(t, 2, page.NextNumber())
	assert.Equal(t, []int{1, 2}, page.Range())
}

func TestPaginateEmpty(t *testing.T) {
	page := paginate.Paginate([]string{}, 10, 5)

	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 0, page.TotalPages)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasNext())
	assert.False(t, page.HasPrev())
}

func TestWindowOffset(t *testing.T) {
	w := paginate.Window[struct{}](25, 10, 3)
	assert.Equal(t, 20, w.Offset())
	assert.Equal(t, 25, w.Total)

	w = paginate.Window[struct{}](25, 0, 1)
	assert.Equal(t, paginate.DefaultSize, w.Size)
}

func TestParseRequest(t *testing.T) {
	cases := map[string]int{
		"":    0,
		"1":   1,
		"7":   7,
		"0":   0,
		"-2":  0,
		"abc": 0,
		"2.5": 0,

		"99999999999999999999":  math.MaxInt,
		"-99999999999999999999": 0,
	}
	for raw, want := range cases {
		assert.Equal(t, want, paginate.ParseRequest(raw), raw)
	}

	huge := paginate.Window[struct{}](25, 10, paginate.ParseRequest("99999999999999999999"))
	assert.Equal(t, 3, huge.Number)
	assert.Equal(t, 20, huge.Offset())
}
