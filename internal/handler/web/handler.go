package web

import (
	"errors"
	"net/http"
	"net/url"

	"TrendWatch/internal/domain/models"
	mid "TrendWatch/internal/middleware"
	"TrendWatch/internal/service/ratelimit"
	"TrendWatch/internal/usecase"
	xhttp "TrendWatch/pkg/http"
	applogger "TrendWatch/pkg/logger"
	"TrendWatch/pkg/util"

	"github.com/labstack/echo/v4"
)

// User-facing messages.
const (
	msgDuplicateUser      = "Username already exists."
	msgInvalidCredentials = "Invalid username or password."
	msgTooManyAttempts    = "Too many attempts. Please wait a minute and try again."
	msgMarketData         = "Market data is unavailable right now. Please try again later."
	msgInternal           = "Something went wrong. Please try again."
)

// Handler serves the HTML pages.
type Handler struct {
	auth      *usecase.AuthUseCase
	forecasts *usecase.ForecastUseCase
	watchlist *usecase.WatchlistUseCase
	limiter   *ratelimit.Limiter
	cookie    mid.CookieConfig
	log       *applogger.Logger
}

func NewHandler(
	auth *usecase.AuthUseCase,
	forecasts *usecase.ForecastUseCase,
	watchlist *usecase.WatchlistUseCase,
	limiter *ratelimit.Limiter,
	cookie mid.CookieConfig,
	l *applogger.Logger,
) *Handler {
	if l == nil {
		l = applogger.Nop()
	}
	return &Handler{
		auth:      auth,
		forecasts: forecasts,
		watchlist: watchlist,
		limiter:   limiter,
		cookie:    cookie,
		log:       l,
	}
}

type authView struct {
	Username string
	Error    string
	Form     models.CredentialsRequest
}

type forecastView struct {
	Ticker    string
	Points    int
	LastDate  string
	LastClose string
	Slope     string
	EndDate   string
	EndClose  string
	ChartURL  string
}

type indexView struct {
	Username  string
	Ticker    string
	Error     string
	Forecast  *forecastView
	Watchlist []string
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	session := mid.Session(h.auth, h.cookie, h.log)
	authed := mid.RequireUser(redirectTo("/login"))
	throttle := ratelimit.ByIP(h.limiter, h.tooManyAttempts)

	e.GET("/register", h.RegisterForm)
	e.POST("/register", h.Register, throttle)
	e.GET("/login", h.LoginForm)
	e.POST("/login", h.Login, throttle)
	e.GET("/logout", h.Logout)

	e.GET("/", h.Index, session, authed)
	e.POST("/", h.Index, session, authed)
	e.POST("/remove/:ticker", h.Remove, session, authed)
	e.GET("/chart", h.Chart, session, authed)
}

func (h *Handler) RegisterForm(c echo.Context) error {
	return c.Render(http.StatusOK, "register.html", authView{})
}

func (h *Handler) Register(c echo.Context) error {
	req := models.CredentialsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, &req); verr != nil {
		return c.Render(http.StatusBadRequest, "register.html", authView{Error: xhttp.FirstMessage(verr), Form: safeForm(req)})
	}

	_, token, err := h.auth.Register(c.Request().Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, models.ErrDuplicateUser):
		return c.Render(http.StatusOK, "register.html", authView{Error: msgDuplicateUser, Form: safeForm(req)})
	case errors.Is(err, models.ErrInvalidCredentials):
		return c.Render(http.StatusBadRequest, "register.html", authView{Error: msgInvalidCredentials, Form: safeForm(req)})
	case err != nil:
		h.log.Error("register failed", applogger.Error(err))
		return c.Render(http.StatusInternalServerError, "register.html", authView{Error: msgInternal, Form: safeForm(req)})
	}

	mid.SetSessionCookie(c, h.cookie, token)
	return c.Redirect(http.StatusFound, "/")
}

func (h *Handler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", authView{})
}

func (h *Handler) Login(c echo.Context) error {
	req := models.CredentialsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, &req); verr != nil {
		return c.Render(http.StatusBadRequest, "login.html", authView{Error: xhttp.FirstMessage(verr), Form: safeForm(req)})
	}

	_, token, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		return c.Render(http.StatusOK, "login.html", authView{Error: msgInvalidCredentials, Form: safeForm(req)})
	case err != nil:
		h.log.Error("login failed", applogger.Error(err))
		return c.Render(http.StatusInternalServerError, "login.html", authView{Error: msgInternal, Form: safeForm(req)})
	}

	mid.SetSessionCookie(c, h.cookie, token)
	return c.Redirect(http.StatusFound, "/")
}

func (h *Handler) Logout(c echo.Context) error {
	if token := mid.SessionToken(c, h.cookie.Name); token != "" {
		if err := h.auth.Logout(c.Request().Context(), token); err != nil {
			h.log.Warn("logout failed", applogger.Error(err))
		}
	}
	mid.ClearSessionCookie(c, h.cookie)
	return c.Redirect(http.StatusFound, "/login")
}

// Index handles the ticker form, the chart summary and the watchlist.
// A ticker may come from the form body or the query string.
func (h *Handler) Index(c echo.Context) error {
	id, _ := mid.IdentityFrom(c)
	ctx := c.Request().Context()
	view := indexView{Username: id.Username}

	req := models.TickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, &req); verr != nil {
		view.Error = xhttp.FirstMessage(verr)
	}
	if req.Ticker == "" {
		req.Ticker = c.QueryParam("ticker")
	}

	if view.Error == "" {
		if ticker := util.NormalizeTicker(req.Ticker); ticker != "" {
			view.Ticker = ticker
			res, err := h.forecasts.Forecast(ctx, id, ticker)
			if err != nil {
				view.Error = h.forecastMessage(err)
			} else {
				view.Forecast = summarize(res)
			}
		}
	}

	list, err := h.watchlist.List(ctx, id)
	if err != nil {
		h.log.Error("watchlist load failed", applogger.Int64("user_id", id.UserID), applogger.Error(err))
		if view.Error == "" {
			view.Error = msgInternal
		}
	}
	view.Watchlist = list

	return c.Render(http.StatusOK, "index.html", view)
}

func (h *Handler) Remove(c echo.Context) error {
	id, _ := mid.IdentityFrom(c)
	if _, err := h.watchlist.Remove(c.Request().Context(), id, c.Param("ticker")); err != nil && !errors.Is(err, models.ErrEmptyTicker) {
		h.log.Error("watchlist remove failed", applogger.Int64("user_id", id.UserID), applogger.Error(err))
	}
	return c.Redirect(http.StatusFound, "/")
}

// Chart renders the interactive chart page embedded by the home view.
func (h *Handler) Chart(c echo.Context) error {
	res, err := h.forecasts.Preview(c.Request().Context(), c.QueryParam("ticker"))
	if err != nil {
		status := http.StatusUnprocessableEntity
		switch {
		case errors.Is(err, models.ErrEmptyTicker):
			status = http.StatusBadRequest
		case errors.Is(err, models.ErrMarketData):
			status = http.StatusBadGateway
		case !errors.Is(err, models.ErrInsufficientData):
			status = http.StatusInternalServerError
		}
		return c.String(status, h.forecastMessage(err))
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return renderChart(c.Response(), res)
}

func (h *Handler) forecastMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrInsufficientData), errors.Is(err, models.ErrEmptyTicker):
		return err.Error()
	case errors.Is(err, models.ErrMarketData):
		return msgMarketData
	default:
		h.log.Error("forecast failed", applogger.Error(err))
		return msgInternal
	}
}

func (h *Handler) tooManyAttempts(c echo.Context) error {
	page := "login.html"
	if c.Path() == "/register" {
		page = "register.html"
	}
	return c.Render(http.StatusTooManyRequests, page, authView{Error: msgTooManyAttempts})
}

func summarize(res *models.ForecastResult) *forecastView {
	last := res.Historical.Last()
	v := &forecastView{
		Ticker:    res.Ticker,
		Points:    res.Historical.Len(),
		LastDate:  util.FormatDay(last.Date),
		LastClose: util.FormatPrice(last.Close),
		Slope:     util.FormatPrice(res.Model.Slope),
		ChartURL:  "/chart?" + url.Values{"ticker": {res.Ticker}}.Encode(),
	}
	if n := len(res.Projected); n > 0 {
		end := res.Projected[n-1]
		v.EndDate = util.FormatDay(end.Date)
		v.EndClose = util.FormatPrice(end.Close)
	}
	return v
}

// safeForm echoes the username back into the form, never the password.
func safeForm(req models.CredentialsRequest) models.CredentialsRequest {
	return models.CredentialsRequest{Username: req.Username}
}

func redirectTo(path string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Redirect(http.StatusFound, path)
	}
}
