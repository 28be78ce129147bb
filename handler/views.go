package handler

import (
	"context"
	"fmt"
	"html/template"
	"strconv"

	"github.com/labstack/echo/v4"

	"yatube/domain"
	"yatube/follow"
	"yatube/paginate"
	"yatube/render"
	"yatube/validation"
)

// Layout is what base.html needs on every page.
type Layout struct {
	Viewer *domain.User
	Title  string
}

func (h *Handler) layout(c echo.Context, title string) Layout {
	return Layout{Viewer: viewer(c), Title: title}
}

type PostDTO struct {
	domain.Post
	Body     template.HTML
	ImageURL string
}

type formView struct {
	Values map[string]string
	Errors validation.FieldErrors
}

type feedView struct {
	Layout
	Heading string
	Posts   paginate.Page[PostDTO]
	Group   *domain.Group
	Tag     *domain.Tag
}

type profileView struct {
	feedView
	Author    domain.User
	Counts    follow.Counts
	CanFollow bool
	Following bool
}

type postDetailView struct {
	Layout
	Post        PostDTO
	AuthorPosts int
	Comments    []domain.Comment
	Related     []PostDTO
	CanEdit     bool
}

type postFormView struct {
	Layout
	IsEdit   bool
	PostID   int64
	Groups   []domain.Group
	ImageURL string
	Form     formView
}

type shareView struct {
	Layout
	Post PostDTO
	Sent bool
	Form formView
}

type authView struct {
	Layout
	Next          string
	SignupEnabled bool
	Form          formView
}

type errorView struct {
	Layout
	Code    int
	Message string
}

func (h *Handler) postDTO(ctx context.Context, p domain.Post) (PostDTO, error) {
	dto := PostDTO{Post: p, Body: render.Markdown(p.Text)}
	if p.Image != "" && h.Media != nil {
		u, err := h.Media.URL(ctx, p.Image)
		if err != nil {
			return PostDTO{}, fmt.Errorf("image of post %d: %w", p.ID, err)
		}
		dto.ImageURL = u
	}
	return dto, nil
}

func (h *Handler) postDTOs(ctx context.Context, posts []domain.Post) ([]PostDTO, error) {
	out := make([]PostDTO, 0, len(posts))
	for _, p := range posts {
		dto, err := h.postDTO(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, dto)
	}
	return out, nil
}

func (h *Handler) pageDTO(ctx context.Context, p paginate.Page[domain.Post]) (paginate.Page[PostDTO], error) {
	items, err := h.postDTOs(ctx, p.Items)
	if err != nil {
		return paginate.Page[PostDTO]{}, err
	}
	return paginate.Page[PostDTO]{
		Items:      items,
		Number:     p.Number,
		Size:       p.Size,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}, nil
}

func viewerKey(c echo.Context) string {
	if u := viewer(c); u != nil {
		return strconv.FormatInt(u.ID, 10)
	}
	return "anon"
}
