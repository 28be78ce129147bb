package domain

import (
	"strings"
	"unicode"

	"github.com/samber/lo"
)

type Tag struct {
	ID   int64
	Name string
	Slug string
}

// Slugify lowercases s and keeps letters, digits, '-' and '_', turning
// whitespace runs into a single '-'.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
			dash = false
		case unicode.IsSpace(r) || r == '-':
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// ParseTags splits a comma separated tag list, dropping blanks and
// duplicates by slug while keeping the first spelling.
func ParseTags(raw string) []Tag {
	tags := lo.FilterMap(strings.Split(raw, ","), func(part string, _ int) (Tag, bool) {
		name := strings.TrimSpace(part)
		slug := Slugify(name)
		return Tag{Name: name, Slug: slug}, slug != ""
	})
	return lo.UniqBy(tags, func(t Tag) string { return t.Slug })
}
