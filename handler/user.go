package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"yatube/domain"
	"yatube/validation"
)

const (
	authCookie = "Authorization"
	ctxViewer  = "viewer"
)

type authClaims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type signupForm struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"omitempty,email"`
	Password  string `form:"password1" validate:"required,min=8"`
	Password2 string `form:"password2" validate:"required,eqfield=Password"`
}

type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// loadViewer resolves the user behind a valid token. Tokens of deleted
// users are treated as anonymous.
func (h *Handler) loadViewer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		if !ok || !token.Valid {
			return next(c)
		}
		claims, ok := token.Claims.(*authClaims)
		if !ok {
			return next(c)
		}

		u, err := h.Store.GetUserByID(c.Request().Context(), claims.UserID)
		switch {
		case err == nil:
			c.Set(ctxViewer, &u)
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}
		return next(c)
	}
}

func viewer(c echo.Context) *domain.User {
	u, _ := c.Get(ctxViewer).(*domain.User)
	return u
}

func (h *Handler) loginRequired(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if viewer(c) == nil {
			return c.Redirect(http.StatusFound, "/auth/login/?next="+url.QueryEscape(c.Request().URL.RequestURI()))
		}
		return next(c)
	}
}

func (h *Handler) GetNewUserForm(c echo.Context) error {
	if !h.signupEnabled() {
		return echo.NewHTTPError(http.StatusForbidden, "Sign up has been disabled.")
	}
	return c.Render(http.StatusOK, "signup.html", authView{Layout: h.layout(c, "Sign up")})
}

func (h *Handler) NewUser(c echo.Context) error {
	if !h.signupEnabled() {
		return echo.NewHTTPError(http.StatusForbidden, "Sign up has been disabled.")
	}

	form := signupForm{
		Username:  strings.TrimSpace(c.FormValue("username")),
		Email:     strings.TrimSpace(c.FormValue("email")),
		Password:  c.FormValue("password1"),
		Password2: c.FormValue("password2"),
	}
	rerender := func(code int, errs validation.FieldErrors) error {
		return c.Render(code, "signup.html", authView{
			Layout: h.layout(c, "Sign up"),
			Form: formView{
				Values: map[string]string{"username": form.Username, "email": form.Email},
				Errors: errs,
			},
		})
	}

	if err := c.Validate(&form); err != nil {
		fe := validation.Fields(err)
		if fe == nil {
			return err
		}
		return rerender(http.StatusOK, fe)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := domain.User{Username: form.Username}
	if form.Email != "" {
		user.Email = &form.Email
	}
	err = h.Store.CreateUser(c.Request().Context(), &user, hashedPassword)
	if errors.Is(err, domain.ErrDuplicate) {
		return rerender(http.StatusConflict, validation.FieldErrors{
			"username": "A user with that username already exists.",
		})
	}
	if err != nil {
		return err
	}

	cookie, err := authorizationCookie(user, h.JWTSecret, h.TokenTTL)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)
	h.Log.Info().Str("username", user.Username).Msg("user signed up")

	return c.Redirect(http.StatusFound, "/")
}

func (h *Handler) GetLoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", authView{
		Layout:        h.layout(c, "Log in"),
		Next:          c.QueryParam("next"),
		SignupEnabled: h.signupEnabled(),
	})
}

func (h *Handler) Login(c echo.Context) error {
	form := loginForm{
		Username: strings.TrimSpace(c.FormValue("username")),
		Password: c.FormValue("password"),
	}
	next := c.FormValue("next")
	rerender := func(errs validation.FieldErrors) error {
		return c.Render(http.StatusOK, "login.html", authView{
			Layout:        h.layout(c, "Log in"),
			Next:          next,
			SignupEnabled: h.signupEnabled(),
			Form: formView{
				Values: map[string]string{"username": form.Username},
				Errors: errs,
			},
		})
	}

	if err := c.Validate(&form); err != nil {
		fe := validation.Fields(err)
		if fe == nil {
			return err
		}
		return rerender(fe)
	}

	user, storedPassword, err := h.Store.Credentials(c.Request().Context(), form.Username)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err != nil || bcrypt.CompareHashAndPassword(storedPassword, []byte(form.Password)) != nil {
		return rerender(validation.FieldErrors{
			"form": "Please enter a correct username and password.",
		})
	}

	cookie, err := authorizationCookie(user, h.JWTSecret, h.TokenTTL)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)
	return c.Redirect(http.StatusFound, safeNext(next))
}

func (h *Handler) Logout(c echo.Context) error {
	cookie := new(http.Cookie)
	cookie.Name = authCookie
	cookie.Value = ""
	cookie.Path = "/"
	cookie.HttpOnly = true
	cookie.Expires = time.Now().Add(-1 * time.Second)
	c.SetCookie(cookie)
	return c.Redirect(http.StatusFound, "/")
}

// safeNext only allows redirects to local paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	return next
}

func authorizationCookie(user domain.User, secret string, ttl time.Duration) (*http.Cookie, error) {
	if secret == "" {
		return nil, errors.New("missing secret")
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	exp := time.Now().Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &authClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	signedData, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}

	cookie := new(http.Cookie)
	cookie.Name = authCookie
	cookie.Value = signedData
	cookie.Expires = exp
	cookie.Path = "/"
	cookie.HttpOnly = true
	cookie.SameSite = http.SameSiteLaxMode

	return cookie, nil
}
