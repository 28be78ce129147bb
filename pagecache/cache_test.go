package pagecache_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/pagecache"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// brokenStore fails every operation, like an unreachable cache server.
type brokenStore struct{}

var errUnavailable = errors.New("cache unavailable")

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errUnavailable
}

func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errUnavailable
}

func (brokenStore) Clear(context.Context) error { return errUnavailable }

func page(body string) pagecache.Response {
	return pagecache.Response{Status: http.StatusOK, ContentType: "text/html", Body: []byte(body)}
}

func TestGetOrComputeHitAndExpiry(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	cache := pagecache.New(pagecache.NewMemoryStore().WithClock(clock.Now), zerolog.Nop())

	calls := 0
	compute := func() (pagecache.Response, error) {
		calls++
		return page(fmt.Sprintf("render %d", calls)), nil
	}

	first, err := cache.GetOrCompute(ctx, "home", pagecache.DefaultTTL, compute)
	require.NoError(t, err)
	assert.Equal(t, "render 1", string(first.Body))

	clock.Advance(59 * time.Second)
	second, err := cache.GetOrCompute(ctx, "home", pagecache.DefaultTTL, compute)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	clock.Advance(time.Second)
	third, err := cache.GetOrCompute(ctx, "home", pagecache.DefaultTTL, compute)
	require.NoError(t, err)
	assert.Equal(t, "render 2", string(third.Body))
}

func TestClearDropsEntries(t *testing.T) {
	ctx := context.Background()
	cache := pagecache.New(pagecache.NewMemoryStore(), zerolog.Nop())

	calls := 0
	compute := func() (pagecache.Response, error) {
		calls++
		return page("p"), nil
	}

	_, err := cache.GetOrCompute(ctx, "a", time.Hour, compute)
	require.NoError(t, err)
	require.NoError(t, cache.Clear(ctx))
	_, err = cache.GetOrCompute(ctx, "a", time.Hour, compute)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestComputeErrorsAndNonOKAreNotStored(t *testing.T) {
	ctx := context.Background()
	store := pagecache.NewMemoryStore()
	cache := pagecache.New(store, zerolog.Nop())

	boom := errors.New("boom")
	_, err := cache.GetOrCompute(ctx, "k", time.Hour, func() (pagecache.Response, error) {
		return pagecache.Response{}, boom
	})
	assert.ErrorIs(t, err, boom)

	resp, err := cache.GetOrCompute(ctx, "k", time.Hour, func() (pagecache.Response, error) {
		return pagecache.Response{Status: http.StatusNotFound}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Zero(t, store.Len())
}

func TestFailsOpenWhenStoreIsDown(t *testing.T) {
	ctx := context.Background()
	cache := pagecache.New(brokenStore{}, zerolog.Nop())

	calls := 0
	for i := 0; i < 3; i++ {
		resp, err := cache.GetOrCompute(ctx, "home", time.Minute, func() (pagecache.Response, error) {
			calls++
			return page("fresh"), nil
		})
		require.NoError(t, err)
		assert.Equal(t, "fresh", string(resp.Body))
	}
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, cache.Clear(ctx), errUnavailable)
}

func TestConcurrentReadersAndFill(t *testing.T) {
	ctx := context.Background()
	cache := pagecache.New(pagecache.NewMemoryStore(), zerolog.Nop())

	var calls atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := cache.GetOrCompute(ctx, "home", time.Minute, func() (pagecache.Response, error) {
				calls.Add(1)
				return page("same"), nil
			})
			assert.NoError(t, err)
			assert.Equal(t, "same", string(resp.Body))
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	_, err := cache.GetOrCompute(ctx, "home", time.Minute, func() (pagecache.Response, error) {
		t.Fatal("entry should be cached")
		return pagecache.Response{}, nil
	})
	require.NoError(t, err)
}

func TestMemoryStoreSweep(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := pagecache.NewMemoryStore().WithClock(clock.Now)

	require.NoError(t, store.Set(ctx, "short", []byte("a"), time.Second))
	require.NoError(t, store.Set(ctx, "long", []byte("b"), time.Hour))
	clock.Advance(2 * time.Second)

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())

	_, ok, err := store.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)
}
