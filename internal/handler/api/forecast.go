package api

import (
	"errors"
	"time"

	"TrendWatch/internal/domain/models"
	mid "TrendWatch/internal/middleware"
	"TrendWatch/internal/usecase"
	xhttp "TrendWatch/pkg/http"
	applogger "TrendWatch/pkg/logger"
	"TrendWatch/pkg/util"

	"github.com/labstack/echo/v4"
)

// Handler serves the session-authenticated JSON API under /api.
type Handler struct {
	auth      mid.Authenticator
	forecasts *usecase.ForecastUseCase
	watchlist *usecase.WatchlistUseCase
	cookie    mid.CookieConfig
	log       *applogger.Logger
}

func NewHandler(
	auth mid.Authenticator,
	forecasts *usecase.ForecastUseCase,
	watchlist *usecase.WatchlistUseCase,
	cookie mid.CookieConfig,
	l *applogger.Logger,
) *Handler {
	if l == nil {
		l = applogger.Nop()
	}
	return &Handler{auth: auth, forecasts: forecasts, watchlist: watchlist, cookie: cookie, log: l}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api",
		mid.Session(h.auth, h.cookie, h.log),
		mid.RequireUser(func(c echo.Context) error {
			return xhttp.AppErrorResponse(c, xhttp.UnauthorizedError("login required"))
		}),
	)
	g.GET("/forecast", h.Forecast)
	g.GET("/watchlist", h.Watchlist)
	g.DELETE("/watchlist/:ticker", h.RemoveFromWatchlist)
}

type pointResponse struct {
	Date      string  `json:"date"`
	DayOffset int     `json:"day_offset"`
	Close     float64 `json:"close"`
}

type modelResponse struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Points    int     `json:"points"`
}

type forecastResponse struct {
	Ticker      string          `json:"ticker"`
	Model       modelResponse   `json:"model"`
	Historical  []pointResponse `json:"historical"`
	Trend       []pointResponse `json:"trend"`
	Projected   []pointResponse `json:"projected"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Forecast computes the forecast for ?ticker= and adds it to the caller's watchlist on success.
func (h *Handler) Forecast(c echo.Context) error {
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	id, _ := mid.IdentityFrom(c)
	res, err := h.forecasts.Forecast(c.Request().Context(), id, req.Ticker)
	if err != nil {
		return xhttp.AppErrorResponse(c, h.toAppError(err))
	}
	return xhttp.SuccessResponse(c, toForecastResponse(res))
}

func (h *Handler) toAppError(err error) *xhttp.AppError {
	var ide *models.InsufficientDataError
	switch {
	case errors.As(err, &ide):
		return xhttp.UnprocessableError(xhttp.CodeInsufficientData, ide.Error()).
			WithParam("ticker", ide.Ticker).
			WithParam("usable", ide.Usable).
			WithParam("need", ide.Need)
	case errors.Is(err, models.ErrEmptyTicker):
		return xhttp.BadRequestError(err.Error())
	case errors.Is(err, models.ErrMarketData):
		return xhttp.BadGatewayError("market data unavailable").WithError(err)
	default:
		h.log.Error("api forecast failed", applogger.Error(err))
		return xhttp.InternalError("forecast failed").WithError(err)
	}
}

func toForecastResponse(res *models.ForecastResult) forecastResponse {
	hist := make([]pointResponse, len(res.Historical.Points))
	for i, p := range res.Historical.Points {
		hist[i] = pointResponse{Date: util.FormatDay(p.Date), DayOffset: p.DayOffset, Close: util.RoundPrice(p.Close)}
	}
	return forecastResponse{
		Ticker: res.Ticker,
		Model: modelResponse{
			Slope:     res.Model.Slope,
			Intercept: res.Model.Intercept,
			Points:    res.Model.N,
		},
		Historical:  hist,
		Trend:       toPoints(res.Trend),
		Projected:   toPoints(res.Projected),
		GeneratedAt: res.GeneratedAt.UTC(),
	}
}

func toPoints(in []models.ProjectedPoint) []pointResponse {
	out := make([]pointResponse, len(in))
	for i, p := range in {
		out[i] = pointResponse{Date: util.FormatDay(p.Date), DayOffset: p.DayOffset, Close: util.RoundPrice(p.Close)}
	}
	return out
}
