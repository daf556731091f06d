package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/shortlinks/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLink builds a link with a code unique across test runs against shared backends.
func newLink(owner shortener.OwnerID, createdAt time.Time) *shortener.Link {
	return &shortener.Link{
		Code:        shortener.Code("t" + uuid.NewString()[:12]),
		OriginalURL: "https://example.com/" + uuid.NewString(),
		OwnerID:     owner,
		CreatedAt:   createdAt.UTC().Truncate(time.Microsecond),
	}
}

func newOwner() shortener.OwnerID {
	return shortener.OwnerID(uuid.NewString())
}

// testRepository exercises the behavior every shortener.Repository must share.
//
//nolint:maintidx // one scenario per repository guarantee
func testRepository(t *testing.T, newRepo func(t *testing.T) shortener.Repository) {
	t.Helper()

	ctx := context.Background()
	now := time.Now()

	t.Run("inserts and finds a link by code", func(t *testing.T) {
		repo := newRepo(t)
		link := newLink(newOwner(), now)

		require.NoError(t, repo.Insert(ctx, link))

		got, err := repo.FindByCode(ctx, link.Code)

		require.NoError(t, err)
		assert.Equal(t, link.Code, got.Code)
		assert.Equal(t, link.OriginalURL, got.OriginalURL)
		assert.Equal(t, link.OwnerID, got.OwnerID)
		assert.Equal(t, int64(0), got.VisitCount)
		assert.True(t, link.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("rejects a duplicate code and keeps the original", func(t *testing.T) {
		repo := newRepo(t)
		first := newLink(newOwner(), now)
		second := newLink(newOwner(), now)
		second.Code = first.Code

		require.NoError(t, repo.Insert(ctx, first))

		err := repo.Insert(ctx, second)

		require.ErrorIs(t, err, shortener.ErrDuplicateCode)

		got, err := repo.FindByCode(ctx, first.Code)
		require.NoError(t, err)
		assert.Equal(t, first.OriginalURL, got.OriginalURL)
	})

	t.Run("returns ErrNotFound for an unknown code", func(t *testing.T) {
		repo := newRepo(t)

		got, err := repo.FindByCode(ctx, "missing-code")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("lists only the owner's links newest first", func(t *testing.T) {
		repo := newRepo(t)
		owner := newOwner()
		older := newLink(owner, now.Add(-2*time.Hour))
		newer := newLink(owner, now.Add(-time.Hour))
		foreign := newLink(newOwner(), now)

		for _, link := range []*shortener.Link{older, newer, foreign} {
			require.NoError(t, repo.Insert(ctx, link))
		}

		links, err := repo.FindByOwner(ctx, owner)

		require.NoError(t, err)
		require.Len(t, links, 2)
		assert.Equal(t, newer.Code, links[0].Code)
		assert.Equal(t, older.Code, links[1].Code)
	})

	t.Run("lists nothing for an owner without links", func(t *testing.T) {
		repo := newRepo(t)

		links, err := repo.FindByOwner(ctx, newOwner())

		require.NoError(t, err)
		assert.Empty(t, links)
	})

	t.Run("finds the owner's link by url hash", func(t *testing.T) {
		repo := newRepo(t)
		owner := newOwner()
		link := newLink(owner, now)
		link.URLHash = shortener.URLHash(uuid.NewString())

		require.NoError(t, repo.Insert(ctx, link))

		got, err := repo.FindByOwnerAndHash(ctx, owner, link.URLHash)
		require.NoError(t, err)
		assert.Equal(t, link.Code, got.Code)
		assert.Equal(t, link.URLHash, got.URLHash)

		_, err = repo.FindByOwnerAndHash(ctx, newOwner(), link.URLHash)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("keeps one hashed link per owner and url", func(t *testing.T) {
		repo := newRepo(t)
		owner := newOwner()
		hash := shortener.URLHash(uuid.NewString())

		first := newLink(owner, now)
		first.URLHash = hash
		require.NoError(t, repo.Insert(ctx, first))

		second := newLink(owner, now)
		second.URLHash = hash
		require.ErrorIs(t, repo.Insert(ctx, second), shortener.ErrDuplicateURL)

		other := newLink(newOwner(), now)
		other.URLHash = hash
		require.NoError(t, repo.Insert(ctx, other), "other owners may hash the same url")

		require.NoError(t, repo.DeleteByOwner(ctx, first.Code, owner))

		third := newLink(owner, now)
		third.URLHash = hash
		require.NoError(t, repo.Insert(ctx, third), "a deleted link frees its url")

		got, err := repo.FindByOwnerAndHash(ctx, owner, hash)
		require.NoError(t, err)
		assert.Equal(t, third.Code, got.Code)
	})

	t.Run("does not constrain links without a url hash", func(t *testing.T) {
		repo := newRepo(t)
		owner := newOwner()

		require.NoError(t, repo.Insert(ctx, newLink(owner, now)))
		require.NoError(t, repo.Insert(ctx, newLink(owner, now)))

		links, err := repo.FindByOwner(ctx, owner)
		require.NoError(t, err)
		assert.Len(t, links, 2)
	})

	t.Run("increments visits by exactly one", func(t *testing.T) {
		repo := newRepo(t)
		link := newLink(newOwner(), now)
		require.NoError(t, repo.Insert(ctx, link))

		first, err := repo.IncrementVisit(ctx, link.Code)
		require.NoError(t, err)

		second, err := repo.IncrementVisit(ctx, link.Code)
		require.NoError(t, err)

		assert.Equal(t, int64(1), first.VisitCount)
		assert.Equal(t, int64(2), second.VisitCount)
		assert.Equal(t, link.OriginalURL, second.OriginalURL)
	})

	t.Run("increment of an unknown code returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)

		got, err := repo.IncrementVisit(ctx, "missing-code")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("does not lose concurrent increments", func(t *testing.T) {
		repo := newRepo(t)
		link := newLink(newOwner(), now)
		require.NoError(t, repo.Insert(ctx, link))

		const visits = 50

		var wg sync.WaitGroup

		errs := make(chan error, visits)

		for range visits {
			wg.Add(1)

			go func() {
				defer wg.Done()

				if _, err := repo.IncrementVisit(ctx, link.Code); err != nil {
					errs <- err
				}
			}()
		}

		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		got, err := repo.FindByCode(ctx, link.Code)
		require.NoError(t, err)
		assert.Equal(t, int64(visits), got.VisitCount)
	})

	t.Run("only the owner can delete a link", func(t *testing.T) {
		repo := newRepo(t)
		owner := newOwner()
		link := newLink(owner, now)
		require.NoError(t, repo.Insert(ctx, link))

		err := repo.DeleteByOwner(ctx, link.Code, newOwner())
		require.ErrorIs(t, err, shortener.ErrNotFound)

		_, err = repo.FindByCode(ctx, link.Code)
		require.NoError(t, err, "link must survive a foreign delete")

		require.NoError(t, repo.DeleteByOwner(ctx, link.Code, owner))

		_, err = repo.FindByCode(ctx, link.Code)
		assert.ErrorIs(t, err, shortener.ErrNotFound)

		err = repo.DeleteByOwner(ctx, link.Code, owner)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("keeps codes unique under concurrent inserts", func(t *testing.T) {
		repo := newRepo(t)
		code := shortener.Code(fmt.Sprintf("race%d", time.Now().UnixNano()%1_000_000_000))

		const writers = 10

		var wg sync.WaitGroup

		results := make(chan error, writers)

		for range writers {
			wg.Add(1)

			go func() {
				defer wg.Done()

				link := newLink(newOwner(), now)
				link.Code = code
				results <- repo.Insert(ctx, link)
			}()
		}

		wg.Wait()
		close(results)

		succeeded := 0

		for err := range results {
			if err == nil {
				succeeded++

				continue
			}

			assert.ErrorIs(t, err, shortener.ErrDuplicateCode)
		}

		assert.Equal(t, 1, succeeded)
	})
}
