package cache

import (
	"context"
	"errors"
	"time"

	"TrendWatch/internal/domain/models"
	drepo "TrendWatch/internal/domain/repository"
	pkgcache "TrendWatch/pkg/cache"
	applogger "TrendWatch/pkg/logger"
)

const keyPrefix = "closes"

// MarketData is a read-through cache in front of another MarketData.
// Cache failures are logged and bypassed; upstream errors are never cached.
type MarketData struct {
	next  drepo.MarketData
	cache pkgcache.Service
	ttl   time.Duration
	log   *applogger.Logger
}

var _ drepo.MarketData = (*MarketData)(nil)

// NewMarketData wraps next. A non-positive ttl disables caching.
func NewMarketData(next drepo.MarketData, c pkgcache.Service, ttl time.Duration, l *applogger.Logger) *MarketData {
	if l == nil {
		l = applogger.Nop()
	}
	return &MarketData{next: next, cache: c, ttl: ttl, log: l}
}

func (m *MarketData) FetchDailyCloses(ctx context.Context, ticker string, periodMonths int) ([]models.RawPoint, error) {
	if m.ttl <= 0 || m.cache == nil {
		return m.next.FetchDailyCloses(ctx, ticker, periodMonths)
	}

	key := pkgcache.GenerateKeyWithParams(keyPrefix, ticker, periodMonths)

	var cached []models.RawPoint
	err := m.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, pkgcache.ErrCacheMiss):
		m.log.Warn("price cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	points, err := m.next.FetchDailyCloses(ctx, ticker, periodMonths)
	if err != nil {
		return nil, err
	}

	if err := m.cache.Set(ctx, key, points, m.ttl); err != nil {
		m.log.Warn("price cache write failed", applogger.String("key", key), applogger.Error(err))
	}
	return points, nil
}
