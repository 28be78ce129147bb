// Package paginate slices ordered listings into fixed-size pages.
package paginate

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// DefaultSize is the number of posts shown on every listing page.
const DefaultSize = 10

type Page[T any] struct {
	Items      []T
	Number     int
	Size       int
	Total      int
	TotalPages int
}

func (p Page[T]) HasNext() bool   { return p.Number < p.TotalPages }
func (p Page[T]) HasPrev() bool   { return p.Number > 1 }
func (p Page[T]) NextNumber() int { return p.Number + 1 }
func (p Page[T]) PrevNumber() int { return p.Number - 1 }

// Offset is the index of the first item of the page in the full listing.
func (p Page[T]) Offset() int { return (p.Number - 1) * p.Size }

// Range lists every page number, for rendering page links.
func (p Page[T]) Range() []int {
	out := make([]int, p.TotalPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// Window computes page metadata for a listing of total items without
// holding the items. requested below 1 means the first page, above the
// last page means the last page.
func Window[T any](total, size, requested int) Page[T] {
	if size < 1 {
		size = DefaultSize
	}
	if total < 0 {
		total = 0
	}
	pages := (total + size - 1) / size

	number := requested
	if number < 1 {
		number = 1
	}
	if pages > 0 && number > pages {
		number = pages
	}
	if pages == 0 {
		number = 1
	}

	return Page[T]{
		Number:     number,
		Size:       size,
		Total:      total,
		TotalPages: pages,
	}
}

// Paginate returns the requested page of items. Item order is preserved.
func Paginate[T any](items []T, size, requested int) Page[T] {
	p := Window[T](len(items), size, requested)
	start := p.Offset()
	end := min(start+p.Size, len(items))
	if start >= end {
		p.Items = []T{}
		return p
	}
	p.Items = items[start:end:end]
	return p
}

// ParseRequest reads the raw ?page= value. Missing, malformed and
// non-positive values all come back as 0, which Window treats as page 1.
// Positive numbers too large for an int come back as math.MaxInt, which
// Window clamps to the last page.
func ParseRequest(raw string) int {
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && allDigits(raw) {
		return math.MaxInt
	}
	if err != nil || n < 1 {
		return 0
	}
	return n
}

func allDigits(s string) bool {
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
