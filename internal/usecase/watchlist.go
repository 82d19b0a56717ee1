package usecase

import (
	"context"
	"fmt"
	"time"

	"TrendWatch/internal/domain/models"
	drepo "TrendWatch/internal/domain/repository"
	applogger "TrendWatch/pkg/logger"
	"TrendWatch/pkg/util"
)

// WatchlistUseCase lists and removes watchlist tickers for an identity.
type WatchlistUseCase struct {
	store  drepo.WatchlistStore
	events drepo.EventPublisher
	log    *applogger.Logger
	now    func() time.Time
}

func NewWatchlistUseCase(store drepo.WatchlistStore, events drepo.EventPublisher, l *applogger.Logger) *WatchlistUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	return &WatchlistUseCase{store: store, events: events, log: l, now: time.Now}
}

func (uc *WatchlistUseCase) List(ctx context.Context, id models.Identity) ([]string, error) {
	tickers, err := uc.store.ListFor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	return tickers, nil
}

// Remove deletes rawTicker from the watchlist. Removing an absent ticker is not an error.
func (uc *WatchlistUseCase) Remove(ctx context.Context, id models.Identity, rawTicker string) (bool, error) {
	ticker := util.NormalizeTicker(rawTicker)
	if ticker == "" {
		return false, models.ErrEmptyTicker
	}

	removed, err := uc.store.Remove(ctx, id, ticker)
	if err != nil {
		return false, fmt.Errorf("remove from watchlist: %w", err)
	}
	if removed {
		publishEvent(ctx, uc.events, uc.log, models.WatchlistEvent{
			Type:       models.WatchlistRemoved,
			UserID:     id.UserID,
			Ticker:     ticker,
			OccurredAt: uc.now().UTC(),
		})
	}
	return removed, nil
}
