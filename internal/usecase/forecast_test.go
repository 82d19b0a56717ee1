package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"TrendWatch/internal/domain/models"
	"TrendWatch/internal/services/forecast"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newForecastUC(market *fakeMarket, wl *memWatchlist, pub *recordingPublisher, m *recordingMetrics) *ForecastUseCase {
	uc := NewForecastUseCase(market, forecast.NewEngine(), wl, pub, m, 6, nil)
	uc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return uc
}

func TestForecast_SuccessAddsToWatchlistOnce(t *testing.T) {
	market := &fakeMarket{points: map[string][]models.RawPoint{"TSLA": linearCloses(35)}}
	wl := newMemWatchlist()
	pub := &recordingPublisher{}
	m := newRecordingMetrics()
	uc := newForecastUC(market, wl, pub, m)
	id := models.Identity{UserID: 1, Username: "alice"}

	res, err := uc.Forecast(context.Background(), id, " tsla ")
	require.NoError(t, err)
	assert.Equal(t, "TSLA", res.Ticker)
	require.Len(t, res.Projected, 30)
	assert.InDelta(t, 135.0, res.Projected[0].Close, 1e-9)

	_, err = uc.Forecast(context.Background(), id, "TSLA")
	require.NoError(t, err)

	list, _ := wl.ListFor(context.Background(), id)
	assert.Equal(t, []string{"TSLA"}, list)
	assert.Equal(t, []string{"TSLA", "TSLA"}, market.calls)

	require.Len(t, pub.events, 1, "only the first add publishes")
	assert.Equal(t, models.WatchlistAdded, pub.events[0].Type)
	assert.Equal(t, int64(1), pub.events[0].UserID)

	assert.Equal(t, []string{OutcomeOK, OutcomeOK}, m.outcomes)
	assert.InDelta(t, 134.0, m.lastClose["TSLA"], 1e-9)
}

func TestForecast_InsufficientDataLeavesWatchlistAlone(t *testing.T) {
	market := &fakeMarket{points: map[string][]models.RawPoint{"NEWCO": linearCloses(12)}}
	wl := newMemWatchlist()
	pub := &recordingPublisher{}
	m := newRecordingMetrics()
	uc := newForecastUC(market, wl, pub, m)
	id := models.Identity{UserID: 1}

	_, err := uc.Forecast(context.Background(), id, "newco")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
	assert.Contains(t, err.Error(), "NEWCO")

	_, err = uc.Forecast(context.Background(), id, "UNKNOWN")
	assert.ErrorIs(t, err, models.ErrInsufficientData)

	list, _ := wl.ListFor(context.Background(), id)
	assert.Empty(t, list)
	assert.Empty(t, pub.events)
	assert.Equal(t, []string{OutcomeInsufficientData, OutcomeInsufficientData}, m.outcomes)
}

func TestForecast_EmptyTicker(t *testing.T) {
	market := &fakeMarket{}
	uc := newForecastUC(market, newMemWatchlist(), &recordingPublisher{}, newRecordingMetrics())

	_, err := uc.Forecast(context.Background(), models.Identity{UserID: 1}, "   ")
	assert.ErrorIs(t, err, models.ErrEmptyTicker)
	assert.Empty(t, market.calls)
}

func TestForecast_MarketErrorIsWrapped(t *testing.T) {
	market := &fakeMarket{err: errors.New("connection reset")}
	m := newRecordingMetrics()
	uc := newForecastUC(market, newMemWatchlist(), &recordingPublisher{}, m)

	_, err := uc.Forecast(context.Background(), models.Identity{UserID: 1}, "AAPL")
	assert.ErrorIs(t, err, models.ErrMarketData)
	assert.Equal(t, []string{"market_data"}, m.errors)
}

func TestForecast_WatchlistFailureIsReturned(t *testing.T) {
	market := &fakeMarket{points: map[string][]models.RawPoint{"AAPL": linearCloses(40)}}
	wl := newMemWatchlist()
	wl.err = errors.New("disk full")
	uc := newForecastUC(market, wl, &recordingPublisher{}, newRecordingMetrics())

	_, err := uc.Forecast(context.Background(), models.Identity{UserID: 1}, "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestForecast_PublisherFailureIsNotFatal(t *testing.T) {
	market := &fakeMarket{points: map[string][]models.RawPoint{"AAPL": linearCloses(40)}}
	pub := &recordingPublisher{err: errors.New("broker down")}
	uc := newForecastUC(market, newMemWatchlist(), pub, newRecordingMetrics())

	_, err := uc.Forecast(context.Background(), models.Identity{UserID: 1}, "AAPL")
	require.NoError(t, err)
	assert.Len(t, pub.events, 1)
}

func TestPreview_DoesNotTouchWatchlist(t *testing.T) {
	market := &fakeMarket{points: map[string][]models.RawPoint{"AAPL": linearCloses(40)}}
	wl := newMemWatchlist()
	uc := newForecastUC(market, wl, &recordingPublisher{}, newRecordingMetrics())

	res, err := uc.Preview(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, 40, res.Historical.Len())
	assert.Empty(t, wl.rows)
}
