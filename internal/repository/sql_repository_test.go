package repository

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"TrendWatch/internal/domain/models"
	"TrendWatch/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *database.Client {
	t.Helper()
	c, err := database.NewClient(
		database.WithDriver(database.DriverSQLite),
		database.WithDSN(filepath.Join(t.TempDir(), "tw.db")),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.InitSchema(context.Background(), c.Schema()))
	return c
}

func TestSQLUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLUserRepository(db)
	ctx := context.Background()

	u, err := repo.Create(ctx, "alice", "hash-1")
	require.NoError(t, err)
	assert.Positive(t, u.ID)

	_, err = repo.Create(ctx, "alice", "hash-2")
	assert.ErrorIs(t, err, models.ErrDuplicateUser)

	found, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.Equal(t, "hash-1", found.PasswordHash)
	assert.WithinDuration(t, time.Now(), found.CreatedAt, time.Minute)

	_, err = repo.FindByUsername(ctx, "bob")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestSQLWatchlistStore(t *testing.T) {
	db := newTestDB(t)
	users := NewSQLUserRepository(db)
	store := NewSQLWatchlistStore(db)
	ctx := context.Background()

	alice, err := users.Create(ctx, "alice", "h")
	require.NoError(t, err)
	bob, err := users.Create(ctx, "bob", "h")
	require.NoError(t, err)
	a := models.Identity{UserID: alice.ID, Username: alice.Username}
	b := models.Identity{UserID: bob.ID, Username: bob.Username}

	added, err := store.AddIfAbsent(ctx, a, "AAPL")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = store.AddIfAbsent(ctx, a, "AAPL")
	require.NoError(t, err)
	assert.False(t, added, "second add is a no-op")

	_, err = store.AddIfAbsent(ctx, a, "MSFT")
	require.NoError(t, err)
	_, err = store.AddIfAbsent(ctx, b, "AAPL")
	require.NoError(t, err)

	list, err := store.ListFor(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, list)

	removed, err := store.Remove(ctx, a, "TSLA")
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = store.Remove(ctx, a, "AAPL")
	require.NoError(t, err)
	assert.True(t, removed)

	list, err = store.ListFor(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []string{"MSFT"}, list)

	list, err = store.ListFor(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, list)

	empty, err := store.ListFor(ctx, models.Identity{UserID: 999})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestSQLWatchlistStore_ConcurrentAdds(t *testing.T) {
	db := newTestDB(t)
	u, err := NewSQLUserRepository(db).Create(context.Background(), "carol", "h")
	require.NoError(t, err)
	id := models.Identity{UserID: u.ID}
	store := NewSQLWatchlistStore(db)

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			added, err := store.AddIfAbsent(context.Background(), id, "NVDA")
			assert.NoError(t, err)
			results[i] = added
		}(i)
	}
	wg.Wait()

	n := 0
	for _, r := range results {
		if r {
			n++
		}
	}
	assert.Equal(t, 1, n)

	list, err := store.ListFor(context.Background(), id)
	require.NoError(t, err)
	sort.Strings(list)
	assert.Equal(t, []string{"NVDA"}, list)
}
