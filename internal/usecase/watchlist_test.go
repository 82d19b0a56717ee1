package usecase

import (
	"context"
	"testing"

	"TrendWatch/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchlist_RemoveNormalizesAndIsIdempotent(t *testing.T) {
	wl := newMemWatchlist()
	pub := &recordingPublisher{}
	uc := NewWatchlistUseCase(wl, pub, nil)
	id := models.Identity{UserID: 3}
	ctx := context.Background()

	_, _ = wl.AddIfAbsent(ctx, id, "TSLA")
	_, _ = wl.AddIfAbsent(ctx, id, "MSFT")

	removed, err := uc.Remove(ctx, id, "tsla")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = uc.Remove(ctx, id, "TSLA")
	require.NoError(t, err)
	assert.False(t, removed)

	list, err := uc.List(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"MSFT"}, list)

	require.Len(t, pub.events, 1)
	assert.Equal(t, models.WatchlistRemoved, pub.events[0].Type)
	assert.Equal(t, "TSLA", pub.events[0].Ticker)

	_, err = uc.Remove(ctx, id, " ")
	assert.ErrorIs(t, err, models.ErrEmptyTicker)
}

func TestWatchlist_ListIsPerUser(t *testing.T) {
	wl := newMemWatchlist()
	uc := NewWatchlistUseCase(wl, nil, nil)
	ctx := context.Background()

	_, _ = wl.AddIfAbsent(ctx, models.Identity{UserID: 1}, "AAPL")

	list, err := uc.List(ctx, models.Identity{UserID: 2})
	require.NoError(t, err)
	assert.Empty(t, list)
}
