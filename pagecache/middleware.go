package pagecache

import (
	"bytes"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Middleware caches successful GET responses of the wrapped route for ttl.
// viewer names the requester so signed in users get their own entries.
func (c *Cache) Middleware(ttl time.Duration, viewer func(echo.Context) string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			req := ec.Request()
			if req.Method != http.MethodGet {
				return next(ec)
			}

			resp, err := c.GetOrCompute(req.Context(), Key(req, viewer(ec)), ttl, func() (Response, error) {
				return capture(ec, next)
			})
			if err != nil {
				return err
			}
			return ec.Blob(resp.Status, resp.ContentType, resp.Body)
		}
	}
}

// capture runs next against a buffer instead of the client connection.
func capture(ec echo.Context, next echo.HandlerFunc) (Response, error) {
	orig := ec.Response()
	rec := &recorder{header: http.Header{}}
	ec.SetResponse(echo.NewResponse(rec, ec.Echo()))
	defer ec.SetResponse(orig)

	if err := next(ec); err != nil {
		return Response{}, err
	}
	status := rec.status
	if status == 0 {
		status = http.StatusOK
	}
	return Response{
		Status:      status,
		ContentType: rec.header.Get(echo.HeaderContentType),
		Body:        rec.body.Bytes(),
	}, nil
}

type recorder struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (r *recorder) Header() http.Header { return r.header }

func (r *recorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.body.Write(b)
}
