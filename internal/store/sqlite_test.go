package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/serroba/shortlinks/internal/auth"
	"github.com/serroba/shortlinks/internal/shortener"
	"github.com/serroba/shortlinks/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.OpenSQLiteStore(context.Background(), ":memory:")
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Shutdown() })

	return s
}

func TestSQLiteStore(t *testing.T) {
	testRepository(t, func(t *testing.T) shortener.Repository {
		return newSQLiteStore(t)
	})
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "links.db")

	first, err := store.OpenSQLiteStore(ctx, path)
	require.NoError(t, err)

	link := newLink(newOwner(), time.Now())
	require.NoError(t, first.Insert(ctx, link))
	_, err = first.IncrementVisit(ctx, link.Code)
	require.NoError(t, err)
	require.NoError(t, first.Shutdown())

	second, err := store.OpenSQLiteStore(ctx, path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = second.Shutdown() })

	got, err := second.FindByCode(ctx, link.Code)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.VisitCount)
	assert.True(t, link.CreatedAt.Equal(got.CreatedAt))
}

func TestSQLiteStore_Ping(t *testing.T) {
	s := newSQLiteStore(t)

	assert.NoError(t, s.Ping(context.Background()))
}

func TestOpenSQLiteStore_ReportsUnopenableDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "links.db")

	_, err := store.OpenSQLiteStore(context.Background(), path)

	assert.ErrorContains(t, err, "configure sqlite")
}

func TestUserSQLiteStore(t *testing.T) {
	testUserRepository(t, store.NewUserSQLiteStore(newSQLiteStore(t)))
}

func TestVisitSQLiteStore(t *testing.T) {
	testVisitStore(t, store.NewVisitSQLiteStore(newSQLiteStore(t)))
}

func TestSQLiteStores_KeepAccountsAndVisitsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "links.db")

	first, err := store.OpenSQLiteStore(ctx, path)
	require.NoError(t, err)

	user := newUser()
	require.NoError(t, store.NewUserSQLiteStore(first).Create(ctx, user))

	today := time.Now().UTC().Truncate(24 * time.Hour)
	require.NoError(t, store.NewVisitSQLiteStore(first).Record(ctx, newVisit(user.ID, today.Add(time.Hour))))
	require.NoError(t, first.Shutdown())

	second, err := store.OpenSQLiteStore(ctx, path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = second.Shutdown() })

	users := store.NewUserSQLiteStore(second)

	got, err := users.FindByUsername(ctx, user.Username)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	taken := newUser()
	taken.Username = user.Username
	assert.ErrorIs(t, users.Create(ctx, taken), auth.ErrUsernameTaken)

	days, err := store.NewVisitSQLiteStore(second).DailyVisits(ctx, user.ID, today)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, int64(1), days[0].Visits)
}
