package stats_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/serroba/shortlinks/internal/shortener"
	"github.com/serroba/shortlinks/internal/stats"
	"github.com/serroba/shortlinks/internal/store"
	"github.com/serroba/shortlinks/internal/visits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = shortener.OwnerID("owner-1")

func seed(t *testing.T, s *store.MemoryStore, code string, linkOwner shortener.OwnerID, age time.Duration, hits int) {
	t.Helper()

	ctx := context.Background()
	link := &shortener.Link{
		Code:        shortener.Code(code),
		OriginalURL: "https://example.com/" + code,
		OwnerID:     linkOwner,
		CreatedAt:   time.Now().Add(-age),
	}
	require.NoError(t, s.Insert(ctx, link))

	for range hits {
		_, err := s.IncrementVisit(ctx, link.Code)
		require.NoError(t, err)
	}
}

func codes(links []*shortener.Link) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		out = append(out, string(l.Code))
	}

	return out
}

func TestAggregator_Summarize(t *testing.T) {
	t.Run("matches the dashboard example", func(t *testing.T) {
		s := store.NewMemoryStore()
		seed(t, s, "aaa", owner, 3*time.Hour, 3)
		seed(t, s, "bbb", owner, 2*time.Hour, 0)
		seed(t, s, "ccc", owner, time.Hour, 7)

		summary, err := stats.NewAggregator(s, nil).Summarize(context.Background(), owner)

		require.NoError(t, err)
		assert.Equal(t, 3, summary.TotalLinks)
		assert.Equal(t, int64(10), summary.TotalVisits)
		assert.Equal(t, []string{"ccc", "bbb", "aaa"}, codes(summary.RecentLinks))
		assert.Equal(t, []string{"ccc", "aaa", "bbb"}, codes(summary.TopLinks))
	})

	t.Run("returns zeros for an owner without links", func(t *testing.T) {
		summary, err := stats.NewAggregator(store.NewMemoryStore(), nil).Summarize(context.Background(), owner)

		require.NoError(t, err)
		assert.Equal(t, 0, summary.TotalLinks)
		assert.Equal(t, int64(0), summary.TotalVisits)
		assert.Empty(t, summary.RecentLinks)
		assert.Empty(t, summary.TopLinks)
	})

	t.Run("caps lists at five and ignores other owners", func(t *testing.T) {
		s := store.NewMemoryStore()
		for i := range 8 {
			seed(t, s, fmt.Sprintf("own%d", i), owner, time.Duration(i)*time.Minute, i)
		}

		seed(t, s, "foreign", "someone-else", 0, 100)

		summary, err := stats.NewAggregator(s, nil).Summarize(context.Background(), owner)

		require.NoError(t, err)
		assert.Equal(t, 8, summary.TotalLinks)
		assert.Equal(t, int64(28), summary.TotalVisits)
		assert.Equal(t, []string{"own0", "own1", "own2", "own3", "own4"}, codes(summary.RecentLinks))
		assert.Equal(t, []string{"own7", "own6", "own5", "own4", "own3"}, codes(summary.TopLinks))
	})

	t.Run("propagates store failures", func(t *testing.T) {
		agg := stats.NewAggregator(failingLister{}, nil)

		_, err := agg.Summarize(context.Background(), owner)

		assert.ErrorIs(t, err, shortener.ErrStoreUnavailable)
	})
}

type failingLister struct{}

func (failingLister) FindByOwner(context.Context, shortener.OwnerID) ([]*shortener.Link, error) {
	return nil, fmt.Errorf("%w: %w", shortener.ErrStoreUnavailable, errors.New("connection refused"))
}

func TestTop(t *testing.T) {
	t.Run("breaks visit ties by newest first", func(t *testing.T) {
		now := time.Now()
		links := []*shortener.Link{
			{Code: "old", VisitCount: 4, CreatedAt: now.Add(-time.Hour)},
			{Code: "new", VisitCount: 4, CreatedAt: now},
			{Code: "max", VisitCount: 9, CreatedAt: now.Add(-2 * time.Hour)},
		}

		assert.Equal(t, []string{"max", "new", "old"}, codes(stats.Top(links, 5)))
	})

	t.Run("does not reorder its input", func(t *testing.T) {
		links := []*shortener.Link{{Code: "a", VisitCount: 1}, {Code: "b", VisitCount: 2}}

		_ = stats.Top(links, 5)

		assert.Equal(t, []string{"a", "b"}, codes(links))
	})
}

func TestAggregator_TopLinks(t *testing.T) {
	s := store.NewMemoryStore()
	seed(t, s, "low", owner, time.Hour, 1)
	seed(t, s, "high", owner, 2*time.Hour, 5)

	top, err := stats.NewAggregator(s, nil).TopLinks(context.Background(), owner)

	require.NoError(t, err)
	assert.Equal(t, []string{"high", "low"}, codes(top))
}

func TestAggregator_Daily(t *testing.T) {
	ctx := context.Background()

	t.Run("buckets visits per utc day", func(t *testing.T) {
		visitStore := store.NewVisitMemoryStore()
		now := time.Now().UTC()

		for _, at := range []time.Time{now, now, now.AddDate(0, 0, -1), now.AddDate(0, 0, -40)} {
			require.NoError(t, visitStore.Record(ctx, &visits.Visit{Code: "abc", OwnerID: string(owner), VisitedAt: at}))
		}

		require.NoError(t, visitStore.Record(ctx, &visits.Visit{Code: "xyz", OwnerID: "other", VisitedAt: now}))

		days, err := stats.NewAggregator(store.NewMemoryStore(), visitStore).Daily(ctx, owner, 30)

		require.NoError(t, err)
		require.Len(t, days, 2)
		assert.Equal(t, int64(1), days[0].Visits)
		assert.Equal(t, int64(2), days[1].Visits)
		assert.True(t, days[0].Date.Before(days[1].Date))
	})

	t.Run("rejects an out of range window", func(t *testing.T) {
		agg := stats.NewAggregator(store.NewMemoryStore(), store.NewVisitMemoryStore())

		_, err := agg.Daily(ctx, owner, 0)
		require.ErrorIs(t, err, shortener.ErrInvalidFormat)

		_, err = agg.Daily(ctx, owner, stats.MaxDays+1)
		assert.ErrorIs(t, err, shortener.ErrInvalidFormat)
	})

	t.Run("reports nothing without a visit store", func(t *testing.T) {
		days, err := stats.NewAggregator(store.NewMemoryStore(), nil).Daily(ctx, owner, 7)

		require.NoError(t, err)
		assert.Empty(t, days)
	})
}
