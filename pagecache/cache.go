// Package pagecache stores fully rendered pages for a fixed time and
// serves them without running the handler again.
//
// The cache fails open: when the backing store errors, the page is
// computed directly and the request still succeeds.
package pagecache

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"yatube/metrics"
)

// DefaultTTL is how long the home feed stays cached.
const DefaultTTL = 60 * time.Second

// Response is a rendered page as it is kept in the store.
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

func (r Response) cacheable() bool {
	return r.Status == http.StatusOK
}

type Cache struct {
	store Store
	log   zerolog.Logger
}

func New(store Store, log zerolog.Logger) *Cache {
	return &Cache{store: store, log: log.With().Str("component", "pagecache").Logger()}
}

// GetOrCompute returns the page stored under key, or runs compute, keeps
// its result for ttl and returns it. Errors from compute are returned and
// never stored; neither are non-200 responses.
func (c *Cache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func() (Response, error)) (Response, error) {
	raw, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		metrics.PageCacheErrors.WithLabelValues("get").Inc()
		c.log.Warn().Err(err).Str("key", key).Msg("cache read failed, rendering directly")
	case ok:
		var resp Response
		if err := json.Unmarshal(raw, &resp); err == nil {
			metrics.PageCacheLookups.WithLabelValues("hit").Inc()
			return resp, nil
		}
		c.log.Warn().Str("key", key).Msg("dropping undecodable cache entry")
	}
	metrics.PageCacheLookups.WithLabelValues("miss").Inc()

	resp, err := compute()
	if err != nil {
		return Response{}, err
	}
	if !resp.cacheable() {
		return resp, nil
	}

	raw, err = json.Marshal(resp)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cannot encode page")
		return resp, nil
	}
	if err := c.store.Set(ctx, key, raw, ttl); err != nil {
		metrics.PageCacheErrors.WithLabelValues("set").Inc()
		c.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return resp, nil
}

// Clear drops every cached page regardless of its expiry.
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		metrics.PageCacheErrors.WithLabelValues("clear").Inc()
		return err
	}
	return nil
}
