package api

import (
	"errors"

	"TrendWatch/internal/domain/models"
	mid "TrendWatch/internal/middleware"
	xhttp "TrendWatch/pkg/http"
	applogger "TrendWatch/pkg/logger"
	"TrendWatch/pkg/util"

	"github.com/labstack/echo/v4"
)

type removeResponse struct {
	Ticker  string `json:"ticker"`
	Removed bool   `json:"removed"`
}

func (h *Handler) Watchlist(c echo.Context) error {
	id, _ := mid.IdentityFrom(c)
	tickers, err := h.watchlist.List(c.Request().Context(), id)
	if err != nil {
		h.log.Error("api watchlist failed", applogger.Int64("user_id", id.UserID), applogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.ListResponse(c, tickers, int64(len(tickers)))
}

// RemoveFromWatchlist succeeds whether or not the ticker was present.
func (h *Handler) RemoveFromWatchlist(c echo.Context) error {
	id, _ := mid.IdentityFrom(c)
	removed, err := h.watchlist.Remove(c.Request().Context(), id, c.Param("ticker"))
	if errors.Is(err, models.ErrEmptyTicker) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	if err != nil {
		h.log.Error("api watchlist remove failed", applogger.Int64("user_id", id.UserID), applogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, removeResponse{Ticker: util.NormalizeTicker(c.Param("ticker")), Removed: removed})
}
