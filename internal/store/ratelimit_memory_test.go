package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/shortlinks/internal/ratelimit"
	"github.com/serroba/shortlinks/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRateLimitStore exercises the sliding-window behavior every ratelimit.Store must share.
func testRateLimitStore(t *testing.T, s ratelimit.Store) {
	t.Helper()

	ctx := context.Background()

	t.Run("counts requests inside the window", func(t *testing.T) {
		key := "client:" + uuid.NewString()

		for want := int64(1); want <= 3; want++ {
			count, err := s.Record(ctx, key, time.Minute)

			require.NoError(t, err)
			assert.Equal(t, want, count)
		}
	})

	t.Run("keeps clients apart", func(t *testing.T) {
		first, second := "client:"+uuid.NewString(), "client:"+uuid.NewString()

		_, err := s.Record(ctx, first, time.Minute)
		require.NoError(t, err)

		count, err := s.Record(ctx, second, time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("forgets requests that left the window", func(t *testing.T) {
		key := "client:" + uuid.NewString()
		window := 50 * time.Millisecond

		for range 2 {
			_, err := s.Record(ctx, key, window)
			require.NoError(t, err)
		}

		time.Sleep(2 * window)

		count, err := s.Record(ctx, key, window)

		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("counts every concurrent request", func(t *testing.T) {
		key := "client:" + uuid.NewString()

		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, _ = s.Record(ctx, key, time.Minute)
			}()
		}

		wg.Wait()

		count, err := s.Record(ctx, key, time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(51), count)
	})
}

func TestRateLimitMemoryStore(t *testing.T) {
	testRateLimitStore(t, store.NewRateLimitMemoryStore())

	t.Run("sweeps clients whose window has passed", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		for i := range 1023 {
			_, _ = s.Record(context.Background(), fmt.Sprintf("idle-%d", i), 10*time.Millisecond)
		}

		time.Sleep(20 * time.Millisecond)

		_, err := s.Record(context.Background(), "active", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, 1, s.Keys())
	})
}
