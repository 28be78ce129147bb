package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"yatube/feed"
)

func (h *Handler) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	res, err := h.Feed.Build(ctx, feed.ByAuthor(c.Param("username")), feedRequest(c))
	if err != nil {
		return err
	}
	posts, err := h.pageDTO(ctx, res.Page)
	if err != nil {
		return err
	}
	author := *res.Author
	counts, err := h.Follows.Counts(ctx, author.ID)
	if err != nil {
		return err
	}

	v := profileView{
		feedView: feedView{
			Layout:  h.layout(c, "Profile of "+author.Username),
			Heading: author.Username,
			Posts:   posts,
		},
		Author: author,
		Counts: counts,
	}
	if me := viewer(c); me != nil && me.ID != author.ID {
		v.CanFollow = true
		if v.Following, err = h.Follows.IsFollowing(ctx, me.ID, author.ID); err != nil {
			return err
		}
	}
	return c.Render(http.StatusOK, "profile.html", v)
}

func (h *Handler) ProfileFollow(c echo.Context) error {
	ctx := c.Request().Context()
	author, err := h.Store.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return err
	}
	me := viewer(c)
	if err := h.Follows.Follow(ctx, me.ID, author.ID); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/profile/"+url.PathEscape(me.Username)+"/")
}

func (h *Handler) ProfileUnfollow(c echo.Context) error {
	ctx := c.Request().Context()
	author, err := h.Store.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return err
	}
	me := viewer(c)
	if err := h.Follows.Unfollow(ctx, me.ID, author.ID); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/profile/"+url.PathEscape(me.Username)+"/")
}
