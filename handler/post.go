package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"yatube/domain"
	"yatube/feed"
	"yatube/mail"
	"yatube/media"
	"yatube/metrics"
	"yatube/paginate"
	"yatube/store"
	"yatube/validation"
)

type postForm struct {
	Text  string `form:"text" validate:"required"`
	Group string `form:"group" validate:"omitempty,number"`
	Tags  string `form:"tags" validate:"max=200"`
}

func (f postForm) values() map[string]string {
	return map[string]string{"text": f.Text, "group": f.Group, "tags": f.Tags}
}

type commentForm struct {
	Text string `form:"text" validate:"required"`
}

type shareForm struct {
	Name     string `form:"name" validate:"required,max=25"`
	Email    string `form:"email" validate:"required,email"`
	To       string `form:"to" validate:"required,email"`
	Comments string `form:"comments" validate:"max=2000"`
}

func (f shareForm) values() map[string]string {
	return map[string]string{"name": f.Name, "email": f.Email, "to": f.To, "comments": f.Comments}
}

func postID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, echo.ErrNotFound
	}
	return id, nil
}

func feedRequest(c echo.Context) feed.Request {
	return feed.Request{
		Viewer: viewer(c),
		Page:   paginate.ParseRequest(c.QueryParam("page")),
	}
}

func (h *Handler) renderFeed(c echo.Context, page string, f feed.Filter, heading string) error {
	ctx := c.Request().Context()
	res, err := h.Feed.Build(ctx, f, feedRequest(c))
	if err != nil {
		return err
	}
	posts, err := h.pageDTO(ctx, res.Page)
	if err != nil {
		return err
	}
	if res.Group != nil {
		heading = res.Group.Title
	}
	return c.Render(http.StatusOK, page, feedView{
		Layout:  h.layout(c, heading),
		Heading: heading,
		Posts:   posts,
		Group:   res.Group,
		Tag:     res.Tag,
	})
}

func (h *Handler) Index(c echo.Context) error {
	return h.renderFeed(c, "index.html", feed.All(), "Latest updates")
}

func (h *Handler) TagPosts(c echo.Context) error {
	return h.renderFeed(c, "index.html", feed.ByTag(c.Param("slug")), "Latest updates")
}

func (h *Handler) GroupPosts(c echo.Context) error {
	return h.renderFeed(c, "group_list.html", feed.ByGroup(c.Param("slug")), "")
}

func (h *Handler) FollowIndex(c echo.Context) error {
	return h.renderFeed(c, "follow.html", feed.ByFollows(viewer(c).ID), "Posts of the authors you follow")
}

func (h *Handler) PostDetail(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := postID(c)
	if err != nil {
		return err
	}
	post, err := h.Store.GetPost(ctx, id)
	if err != nil {
		return err
	}
	dto, err := h.postDTO(ctx, post)
	if err != nil {
		return err
	}

	authorPosts, err := h.Store.CountPosts(ctx, store.PostQuery{AuthorID: post.AuthorID})
	if err != nil {
		return err
	}
	comments, err := h.Store.ListComments(ctx, id)
	if err != nil {
		return err
	}
	related, err := h.Feed.Related(ctx, post)
	if err != nil {
		return err
	}
	relatedDTOs, err := h.postDTOs(ctx, related)
	if err != nil {
		return err
	}

	me := viewer(c)
	return c.Render(http.StatusOK, "post_detail.html", postDetailView{
		Layout:      h.layout(c, "Post "+post.Excerpt()),
		Post:        dto,
		AuthorPosts: authorPosts,
		Comments:    comments,
		Related:     relatedDTOs,
		CanEdit:     me != nil && me.ID == post.AuthorID,
	})
}

func (h *Handler) renderPostForm(c echo.Context, v postFormView) error {
	groups, err := h.Store.ListGroups(c.Request().Context())
	if err != nil {
		return err
	}
	v.Groups = groups
	title := "New post"
	if v.IsEdit {
		title = "Edit post"
	}
	v.Layout = h.layout(c, title)
	return c.Render(http.StatusOK, "post_create.html", v)
}

func (h *Handler) GetNewPostForm(c echo.Context) error {
	return h.renderPostForm(c, postFormView{})
}

// bindPost reads the submitted post form into p. Field problems come back
// as FieldErrors with p left without a new image.
func (h *Handler) bindPost(c echo.Context, p *domain.Post) (postForm, validation.FieldErrors, error) {
	ctx := c.Request().Context()
	form := postForm{
		Text:  strings.TrimSpace(c.FormValue("text")),
		Group: strings.TrimSpace(c.FormValue("group")),
		Tags:  strings.TrimSpace(c.FormValue("tags")),
	}

	fe := validation.FieldErrors{}
	if err := c.Validate(&form); err != nil {
		if fe = validation.Fields(err); fe == nil {
			return form, nil, err
		}
	}

	p.Text = form.Text
	p.Tags = domain.ParseTags(form.Tags)
	p.Group = nil
	if form.Group != "" && fe["group"] == "" {
		gid, _ := strconv.ParseInt(form.Group, 10, 64)
		g, err := h.Store.GetGroupByID(ctx, gid)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			fe.Add("group", "Select a valid choice. That choice is not one of the available choices.")
		case err != nil:
			return form, nil, err
		default:
			p.Group = &g
		}
	}

	fh, err := c.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		return form, nil, err
	case len(fe) == 0:
		key, err := media.SaveUpload(ctx, h.Media, fh)
		switch {
		case errors.Is(err, media.ErrNotImage), errors.Is(err, media.ErrTooLarge):
			fe.Add("image", err.Error())
		case err != nil:
			return form, nil, err
		default:
			p.Image = key
		}
	}
	return form, fe, nil
}

func (h *Handler) NewPost(c echo.Context) error {
	ctx := c.Request().Context()
	me := viewer(c)
	post := domain.Post{AuthorID: me.ID, Author: me.Username}

	form, fe, err := h.bindPost(c, &post)
	if err != nil {
		return err
	}
	if len(fe) > 0 {
		return h.renderPostForm(c, postFormView{Form: formView{Values: form.values(), Errors: fe}})
	}

	if err := h.Store.CreatePost(ctx, &post); err != nil {
		h.discardImage(ctx, post.Image)
		return fmt.Errorf("error creating post: %w", err)
	}
	metrics.PostsCreated.Inc()
	h.Log.Info().Int64("post_id", post.ID).Str("author", me.Username).Msg("post created")

	return c.Redirect(http.StatusFound, "/profile/"+url.PathEscape(me.Username)+"/")
}

// ownPost loads the post named in the path. It fails with
// domain.ErrForbidden, and still returns the post, when the viewer is not
// its author.
func (h *Handler) ownPost(c echo.Context) (domain.Post, error) {
	id, err := postID(c)
	if err != nil {
		return domain.Post{}, err
	}
	post, err := h.Store.GetPost(c.Request().Context(), id)
	if err != nil {
		return domain.Post{}, err
	}
	if post.AuthorID != viewer(c).ID {
		return post, domain.ErrForbidden
	}
	return post, nil
}

// notAuthor sends non-authors back to the post instead of failing.
func notAuthor(c echo.Context, post domain.Post, err error) error {
	if errors.Is(err, domain.ErrForbidden) {
		return c.Redirect(http.StatusFound, postURL(post.ID))
	}
	return err
}

func postURL(id int64) string {
	return "/posts/" + strconv.FormatInt(id, 10) + "/"
}

func (h *Handler) GetEditPostForm(c echo.Context) error {
	post, err := h.ownPost(c)
	if err != nil {
		return notAuthor(c, post, err)
	}

	dto, err := h.postDTO(c.Request().Context(), post)
	if err != nil {
		return err
	}
	values := map[string]string{
		"text": post.Text,
		"tags": strings.Join(lo.Map(post.Tags, func(t domain.Tag, _ int) string { return t.Name }), ", "),
	}
	if post.Group != nil {
		values["group"] = strconv.FormatInt(post.Group.ID, 10)
	}
	return h.renderPostForm(c, postFormView{
		IsEdit:   true,
		PostID:   post.ID,
		ImageURL: dto.ImageURL,
		Form:     formView{Values: values},
	})
}

func (h *Handler) EditPost(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := h.ownPost(c)
	if err != nil {
		return notAuthor(c, post, err)
	}

	oldImage := post.Image
	form, fe, err := h.bindPost(c, &post)
	if err != nil {
		return err
	}
	if len(fe) > 0 {
		dto, err := h.postDTO(ctx, domain.Post{ID: post.ID, Image: oldImage})
		if err != nil {
			return err
		}
		return h.renderPostForm(c, postFormView{
			IsEdit:   true,
			PostID:   post.ID,
			ImageURL: dto.ImageURL,
			Form:     formView{Values: form.values(), Errors: fe},
		})
	}

	if err := h.Store.UpdatePost(ctx, &post); err != nil {
		if post.Image != oldImage {
			h.discardImage(ctx, post.Image)
		}
		return fmt.Errorf("error updating post %d: %w", post.ID, err)
	}
	if post.Image != oldImage {
		h.discardImage(ctx, oldImage)
	}
	return c.Redirect(http.StatusFound, postURL(post.ID))
}

func (h *Handler) DeletePost(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := h.ownPost(c)
	if err != nil {
		return notAuthor(c, post, err)
	}
	if err := h.Store.DeletePost(ctx, post.ID); err != nil {
		return fmt.Errorf("error deleting post %d: %w", post.ID, err)
	}
	h.discardImage(ctx, post.Image)
	h.Log.Info().Int64("post_id", post.ID).Str("author", post.Author).Msg("post deleted")

	return c.Redirect(http.StatusFound, "/profile/"+url.PathEscape(post.Author)+"/")
}

func (h *Handler) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := h.Media.Delete(ctx, key); err != nil {
		h.Log.Warn().Err(err).Str("key", key).Msg("failed to delete image")
	}
}

func (h *Handler) AddComment(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := postID(c)
	if err != nil {
		return err
	}
	if _, err := h.Store.GetPost(ctx, id); err != nil {
		return err
	}

	form := commentForm{Text: strings.TrimSpace(c.FormValue("text"))}
	if err := c.Validate(&form); err != nil {
		if validation.Fields(err) == nil {
			return err
		}
		return c.Redirect(http.StatusFound, postURL(id))
	}

	me := viewer(c)
	comment := domain.Comment{PostID: id, AuthorID: me.ID, Author: me.Username, Text: form.Text}
	if err := h.Store.CreateComment(ctx, &comment); err != nil {
		return fmt.Errorf("error creating comment: %w", err)
	}
	metrics.CommentsCreated.Inc()
	return c.Redirect(http.StatusFound, postURL(id))
}

func (h *Handler) sharedPost(c echo.Context) (PostDTO, error) {
	id, err := postID(c)
	if err != nil {
		return PostDTO{}, err
	}
	post, err := h.Store.GetPost(c.Request().Context(), id)
	if err != nil {
		return PostDTO{}, err
	}
	return h.postDTO(c.Request().Context(), post)
}

func (h *Handler) GetShareForm(c echo.Context) error {
	post, err := h.sharedPost(c)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "share.html", shareView{
		Layout: h.layout(c, "Share "+post.Excerpt()),
		Post:   post,
	})
}

func (h *Handler) SharePost(c echo.Context) error {
	post, err := h.sharedPost(c)
	if err != nil {
		return err
	}

	form := shareForm{
		Name:     strings.TrimSpace(c.FormValue("name")),
		Email:    strings.TrimSpace(c.FormValue("email")),
		To:       strings.TrimSpace(c.FormValue("to")),
		Comments: strings.TrimSpace(c.FormValue("comments")),
	}
	view := shareView{Layout: h.layout(c, "Share "+post.Excerpt()), Post: post}

	if err := c.Validate(&form); err != nil {
		fe := validation.Fields(err)
		if fe == nil {
			return err
		}
		view.Form = formView{Values: form.values(), Errors: fe}
		return c.Render(http.StatusOK, "share.html", view)
	}

	link := h.BaseURL + postURL(post.ID)
	msg := mail.Message{
		From:    h.MailFrom,
		ReplyTo: form.Email,
		To:      form.To,
		Subject: fmt.Sprintf("%s (%s) recommends you read %q", form.Name, form.Email, post.Excerpt()),
		Body:    fmt.Sprintf("Read %q at %s\n\n%s", post.Excerpt(), link, form.Comments),
	}
	if err := mail.Send(c.Request().Context(), h.Mail, msg); err != nil {
		return fmt.Errorf("error sharing post %d: %w", post.ID, err)
	}

	view.Sent = true
	view.Form = formView{Values: form.values()}
	return c.Render(http.StatusOK, "share.html", view)
}
