package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"yatube/config"
	"yatube/domain"
	"yatube/feed"
	"yatube/follow"
	"yatube/logging"
	"yatube/mail"
	"yatube/media"
	"yatube/pagecache"
	"yatube/render"
	"yatube/store"
	"yatube/templates"
	"yatube/validation"
)

type Handler struct {
	Store   *store.Store
	Feed    *feed.Assembler
	Follows *follow.Graph
	Cache   *pagecache.Cache
	Media   media.Store
	Mail    mail.Sender

	MailFrom string
	// BaseURL prefixes links sent by mail. The request Host is never used.
	BaseURL      string
	JWTSecret    string
	EnableSignup bool
	Environment  string
	CacheTTL     time.Duration
	TokenTTL     time.Duration

	// StaticDir and MediaDir are served when set.
	StaticDir string
	MediaDir  string

	Log zerolog.Logger
}

// pages are the templates rendered by the handlers.
var pages = []string{
	"index.html", "group_list.html", "follow.html", "profile.html",
	"post_detail.html", "post_create.html", "share.html",
	"signup.html", "login.html", "about_author.html", "about_tech.html",
	"error.html",
}

// NewServer wires middleware and routes around h.
func NewServer(h *Handler) (*echo.Echo, error) {
	registry, err := render.New(templates.FS)
	if err != nil {
		return nil, err
	}
	for _, page := range pages {
		if !registry.Has(page) {
			return nil, fmt.Errorf("missing page template %s", page)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = registry
	e.Validator = validation.EchoValidator{}
	e.HTTPErrorHandler = h.customHTTPErrorHandler

	e.Pre(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/media/") || p == "/metrics"
		},
	}))
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Recover())
	e.Use(logging.RequestLogger(h.Log))
	e.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(h.JWTSecret),
		TokenLookup:   "cookie:" + authCookie,
		NewClaimsFunc: func(echo.Context) jwt.Claims { return new(authClaims) },
		// A missing or expired token just means an anonymous visitor.
		ContinueOnIgnoredError: true,
		ErrorHandler:           func(echo.Context, error) error { return nil },
	}))
	e.Use(h.loadViewer)

	cached := h.Cache.Middleware(h.CacheTTL, viewerKey)

	// Feeds
	e.GET("/", h.Index, cached)
	e.GET("/tags/:slug/", h.TagPosts, cached)
	e.GET("/group/:slug/", h.GroupPosts)
	e.GET("/profile/:username/", h.Profile)
	e.GET("/follow/", h.FollowIndex, h.loginRequired)

	// Posts
	e.GET("/posts/:id/", h.PostDetail)
	e.GET("/create/", h.GetNewPostForm, h.loginRequired)
	e.POST("/create/", h.NewPost, h.loginRequired)
	e.GET("/posts/:id/edit/", h.GetEditPostForm, h.loginRequired)
	e.POST("/posts/:id/edit/", h.EditPost, h.loginRequired)
	e.POST("/posts/:id/delete/", h.DeletePost, h.loginRequired)
	e.POST("/posts/:id/comment/", h.AddComment, h.loginRequired)
	e.GET("/posts/:id/share/", h.GetShareForm)
	e.POST("/posts/:id/share/", h.SharePost)

	// Follows
	e.POST("/profile/:username/follow/", h.ProfileFollow, h.loginRequired)
	e.POST("/profile/:username/unfollow/", h.ProfileUnfollow, h.loginRequired)

	// Users
	e.GET("/auth/signup/", h.GetNewUserForm)
	e.POST("/auth/signup/", h.NewUser)
	e.GET("/auth/login/", h.GetLoginForm)
	e.POST("/auth/login/", h.Login)
	e.GET("/auth/logout/", h.Logout)

	e.GET("/about/author/", h.About("about_author.html", "About the author"))
	e.GET("/about/tech/", h.About("about_tech.html", "Technologies"))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if h.StaticDir != "" {
		e.Static("/static", h.StaticDir)
	}
	if h.MediaDir != "" {
		e.Static("/media", h.MediaDir)
	}

	return e, nil
}

func (h *Handler) signupEnabled() bool {
	return h.Environment == config.DevEnv || h.EnableSignup
}

func (h *Handler) About(page, title string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, page, h.layout(c, title))
	}
}

// Fancy error pages
func (h *Handler) customHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	}

	message := http.StatusText(code)
	if he != nil && code != http.StatusInternalServerError {
		if m, ok := he.Message.(string); ok && m != "" {
			message = m
		}
	}
	if code >= http.StatusInternalServerError {
		h.Log.Error().Err(err).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Str("uri", c.Request().RequestURI).
			Msg("request failed")
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	page := errorView{Layout: h.layout(c, message), Code: code, Message: message}
	if err := c.Render(code, "error.html", page); err != nil {
		h.Log.Error().Err(err).Msg("rendering error page")
		_ = c.String(code, message)
	}
}
