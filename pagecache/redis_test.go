package pagecache_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/pagecache"
)

func TestRedisStoreUnreachableFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })

	store := pagecache.NewRedisStore(client, "")
	_, _, err := store.Get(context.Background(), "home")
	require.Error(t, err)

	cache := pagecache.New(store, zerolog.Nop())
	resp, err := cache.GetOrCompute(context.Background(), "home", time.Minute, func() (pagecache.Response, error) {
		return page("rendered"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "rendered", string(resp.Body))
}
