package repository

import (
	"context"

	"TrendWatch/internal/domain/models"
)

// MarketData supplies historical daily closes for a ticker over a trailing window.
// An unknown ticker yields an empty slice, not an error.
type MarketData interface {
	FetchDailyCloses(ctx context.Context, ticker string, periodMonths int) ([]models.RawPoint, error)
}

type UserRepository interface {
	Create(ctx context.Context, username, passwordHash string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

// WatchlistStore is a keyed set of tickers per user. Uniqueness of (user, ticker)
// is enforced by the store itself.
type WatchlistStore interface {
	AddIfAbsent(ctx context.Context, id models.Identity, ticker string) (bool, error)
	Remove(ctx context.Context, id models.Identity, ticker string) (bool, error)
	ListFor(ctx context.Context, id models.Identity) ([]string, error)
}

type SessionStore interface {
	Create(ctx context.Context, id models.Identity) (string, error)
	Get(ctx context.Context, token string) (models.Identity, error)
	Delete(ctx context.Context, token string) error
}

type EventPublisher interface {
	PublishWatchlistEvent(ctx context.Context, ev models.WatchlistEvent) error
	Close() error
}

type Metrics interface {
	RecordForecast(ticker, outcome string)
	RecordError(kind string)
	RecordLastClose(ticker string, price float64)
	RecordLatency(op string, seconds float64)
}
