package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TrendWatch/internal/domain/models"
	drepo "TrendWatch/internal/domain/repository"
	"TrendWatch/internal/services/forecast"
	applogger "TrendWatch/pkg/logger"
	"TrendWatch/pkg/util"
)

// Forecast outcomes reported to metrics.
const (
	OutcomeOK               = "ok"
	OutcomeInsufficientData = "insufficient_data"
	OutcomeMarketError      = "market_error"
)

// ForecastUseCase fetches closes, builds a forecast and keeps the watchlist in sync.
type ForecastUseCase struct {
	market       drepo.MarketData
	engine       *forecast.Engine
	watchlist    drepo.WatchlistStore
	events       drepo.EventPublisher
	metrics      drepo.Metrics
	periodMonths int
	log          *applogger.Logger
	now          func() time.Time
}

// NewForecastUseCase creates a new ForecastUseCase instance.
func NewForecastUseCase(
	market drepo.MarketData,
	engine *forecast.Engine,
	watchlist drepo.WatchlistStore,
	events drepo.EventPublisher,
	metrics drepo.Metrics,
	periodMonths int,
	l *applogger.Logger,
) *ForecastUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	return &ForecastUseCase{
		market:       market,
		engine:       engine,
		watchlist:    watchlist,
		events:       events,
		metrics:      metrics,
		periodMonths: periodMonths,
		log:          l,
		now:          time.Now,
	}
}

// Forecast builds the forecast for rawTicker and, only if that succeeds,
// adds the ticker to the caller's watchlist.
func (uc *ForecastUseCase) Forecast(ctx context.Context, id models.Identity, rawTicker string) (*models.ForecastResult, error) {
	res, err := uc.Preview(ctx, rawTicker)
	if err != nil {
		return nil, err
	}

	added, err := uc.watchlist.AddIfAbsent(ctx, id, res.Ticker)
	if err != nil {
		uc.metrics.RecordError("watchlist")
		return nil, fmt.Errorf("add to watchlist: %w", err)
	}
	if added {
		publishEvent(ctx, uc.events, uc.log, models.WatchlistEvent{
			Type:       models.WatchlistAdded,
			UserID:     id.UserID,
			Ticker:     res.Ticker,
			OccurredAt: uc.now().UTC(),
		})
	}
	return res, nil
}

// Preview builds the forecast without touching any watchlist.
func (uc *ForecastUseCase) Preview(ctx context.Context, rawTicker string) (*models.ForecastResult, error) {
	ticker := util.NormalizeTicker(rawTicker)
	if ticker == "" {
		return nil, models.ErrEmptyTicker
	}

	start := time.Now()
	defer func() {
		uc.metrics.RecordLatency("forecast", time.Since(start).Seconds())
	}()

	raw, err := uc.market.FetchDailyCloses(ctx, ticker, uc.periodMonths)
	if err != nil {
		uc.metrics.RecordError("market_data")
		uc.metrics.RecordForecast(ticker, OutcomeMarketError)
		uc.log.Warn("market data fetch failed", applogger.String("ticker", ticker), applogger.Error(err))
		if !errors.Is(err, models.ErrMarketData) {
			err = fmt.Errorf("%w: %v", models.ErrMarketData, err)
		}
		return nil, err
	}

	res, err := uc.engine.BuildForecast(ticker, raw)
	if err != nil {
		uc.metrics.RecordForecast(ticker, OutcomeInsufficientData)
		uc.log.Debug("forecast rejected",
			applogger.String("ticker", ticker),
			applogger.Int("raw_points", len(raw)),
			applogger.Error(err),
		)
		return nil, err
	}

	uc.metrics.RecordForecast(ticker, OutcomeOK)
	uc.metrics.RecordLastClose(ticker, res.Historical.Last().Close)
	return res, nil
}

func publishEvent(ctx context.Context, pub drepo.EventPublisher, l *applogger.Logger, ev models.WatchlistEvent) {
	if pub == nil {
		return
	}
	if err := pub.PublishWatchlistEvent(ctx, ev); err != nil {
		l.Warn("watchlist event publish failed",
			applogger.String("type", string(ev.Type)),
			applogger.String("ticker", ev.Ticker),
			applogger.Error(err),
		)
	}
}
