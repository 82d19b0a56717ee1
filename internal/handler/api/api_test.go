package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"TrendWatch/internal/domain/models"
	mid "TrendWatch/internal/middleware"
	"TrendWatch/internal/repository"
	"TrendWatch/internal/services/forecast"
	"TrendWatch/internal/usecase"
	pkgcache "TrendWatch/pkg/cache"
	"TrendWatch/pkg/database"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cookieName = "tw_api"

type stubMarket map[string][]models.RawPoint

func (m stubMarket) FetchDailyCloses(_ context.Context, ticker string, _ int) ([]models.RawPoint, error) {
	if ticker == "DOWN" {
		return nil, fmt.Errorf("%w: upstream 503", models.ErrMarketData)
	}
	return m[ticker], nil
}

func closes(n int) []models.RawPoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.RawPoint, n)
	for i := range out {
		out[i] = models.RawPoint{Date: start.AddDate(0, 0, i), Close: models.SomeClose(100 + float64(i))}
	}
	return out
}

type nopMetrics struct{}

func (nopMetrics) RecordForecast(string, string)   {}
func (nopMetrics) RecordError(string)              {}
func (nopMetrics) RecordLastClose(string, float64) {}
func (nopMetrics) RecordLatency(string, float64)   {}

type fixture struct {
	e    *echo.Echo
	auth *usecase.AuthUseCase
	db   *database.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewClient(
		database.WithDriver(database.DriverSQLite),
		database.WithDSN(filepath.Join(t.TempDir(), "api.db")),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.InitSchema(context.Background(), db.Schema()))

	mem := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })

	store := repository.NewSQLWatchlistStore(db)
	events := repository.NoopEventPublisher{}
	market := stubMarket{"TSLA": closes(35), "NEWCO": closes(12)}

	auth := usecase.NewAuthUseCase(repository.NewSQLUserRepository(db), repository.NewCacheSessionStore(mem, time.Hour), nil)
	fc := usecase.NewForecastUseCase(market, forecast.NewEngine(), store, events, nopMetrics{}, 6, nil)
	wl := usecase.NewWatchlistUseCase(store, events, nil)

	e := echo.New()
	NewHandler(auth, fc, wl, mid.CookieConfig{Name: cookieName, TTL: time.Hour}, nil).RegisterRoutes(e)
	NewHealthHandler(db, nil).RegisterRoutes(e)
	return &fixture{e: e, auth: auth, db: db}
}

func (f *fixture) login(t *testing.T, user string) string {
	t.Helper()
	_, token, err := f.auth.Register(context.Background(), user, "pw")
	require.NoError(t, err)
	return token
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (f *fixture) do(t *testing.T, method, target, token string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(t, rec.Code, env.Status)
	return rec.Code, env
}

func TestAPIRequiresSession(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(t, http.MethodGet, "/api/watchlist", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Contains(t, string(env.Data), "ERR_UNAUTHORIZED")

	code, _ = f.do(t, http.MethodGet, "/api/forecast?ticker=TSLA", "not-a-session")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAPIForecast(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "alice")

	code, env := f.do(t, http.MethodGet, "/api/forecast?ticker=tsla", token)
	require.Equal(t, http.StatusOK, code, string(env.Data))

	var res forecastResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "TSLA", res.Ticker)
	assert.Equal(t, 35, res.Model.Points)
	assert.InDelta(t, 1.0, res.Model.Slope, 1e-9)
	assert.InDelta(t, 100.0, res.Model.Intercept, 1e-9)
	require.Len(t, res.Historical, 35)
	require.Len(t, res.Trend, 35)
	require.Len(t, res.Projected, 30)
	assert.Equal(t, "2024-01-01", res.Historical[0].Date)
	assert.Equal(t, 35, res.Projected[0].DayOffset)
	assert.Equal(t, 135.0, res.Projected[0].Close)
	assert.Equal(t, "2024-02-05", res.Projected[0].Date)

	code, env = f.do(t, http.MethodGet, "/api/watchlist", token)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"rows":["TSLA"],"total":1}`, string(env.Data))
}

func TestAPIForecastErrors(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "bob")

	code, env := f.do(t, http.MethodGet, "/api/forecast", token)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(env.Data), "Ticker is required")

	code, _ = f.do(t, http.MethodGet, "/api/forecast?ticker=%20%20", token)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = f.do(t, http.MethodGet, "/api/forecast?ticker=NEWCO", token)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	var errs []struct {
		Code   string                 `json:"code"`
		Params map[string]interface{} `json:"params"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &errs))
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_INSUFFICIENT_DATA", errs[0].Code)
	assert.EqualValues(t, 12, errs[0].Params["usable"])
	assert.EqualValues(t, 30, errs[0].Params["need"])

	code, _ = f.do(t, http.MethodGet, "/api/forecast?ticker=DOWN", token)
	assert.Equal(t, http.StatusBadGateway, code)

	code, env = f.do(t, http.MethodGet, "/api/watchlist", token)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"rows":[],"total":0}`, string(env.Data))
}

func TestAPIRemoveFromWatchlist(t *testing.T) {
	f := newFixture(t)
	alice := f.login(t, "alice")
	bob := f.login(t, "bob")

	_, _ = f.do(t, http.MethodGet, "/api/forecast?ticker=TSLA", alice)
	_, _ = f.do(t, http.MethodGet, "/api/forecast?ticker=TSLA", bob)

	code, env := f.do(t, http.MethodDelete, "/api/watchlist/tsla", alice)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"ticker":"TSLA","removed":true}`, string(env.Data))

	code, env = f.do(t, http.MethodDelete, "/api/watchlist/TSLA", alice)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"ticker":"TSLA","removed":false}`, string(env.Data))

	_, env = f.do(t, http.MethodGet, "/api/watchlist", bob)
	assert.JSONEq(t, `{"rows":["TSLA"],"total":1}`, string(env.Data))
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"database":"up"}`, string(env.Data))

	require.NoError(t, f.db.Close())
	code, _ = f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestToAppErrorFallsBackToInternal(t *testing.T) {
	h := NewHandler(nil, nil, nil, mid.CookieConfig{}, nil)
	appErr := h.toAppError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
}
