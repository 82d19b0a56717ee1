package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"TrendWatch/internal/domain/models"
	applogger "TrendWatch/pkg/logger"

	"github.com/labstack/echo/v4"
)

const identityKey = "trendwatch.identity"

// Authenticator resolves a session token to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.Identity, error)
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// Session loads the identity behind the session cookie, if any, into the context.
// Stale cookies are cleared. It never rejects a request.
func Session(auth Authenticator, cookie CookieConfig, l *applogger.Logger) echo.MiddlewareFunc {
	if l == nil {
		l = applogger.Nop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := SessionToken(c, cookie.Name)
			if token == "" {
				return next(c)
			}

			id, err := auth.Authenticate(c.Request().Context(), token)
			switch {
			case err == nil:
				c.Set(identityKey, id)
			case errors.Is(err, models.ErrSessionNotFound):
				ClearSessionCookie(c, cookie)
			default:
				l.Warn("session lookup failed", applogger.Error(err))
			}
			return next(c)
		}
	}
}

// RequireUser calls onMissing instead of next when no identity is present.
func RequireUser(onMissing echo.HandlerFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := IdentityFrom(c); !ok {
				return onMissing(c)
			}
			return next(c)
		}
	}
}

// IdentityFrom returns the authenticated identity of the request.
func IdentityFrom(c echo.Context) (models.Identity, bool) {
	id, ok := c.Get(identityKey).(models.Identity)
	return id, ok
}

// SessionToken reads the raw session token from the request cookie.
func SessionToken(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}

// SetSessionCookie writes the session cookie.
func SetSessionCookie(c echo.Context, cfg CookieConfig, token string) {
	c.SetCookie(&http.Cookie{
		Name:     cfg.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c echo.Context, cfg CookieConfig) {
	c.SetCookie(&http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
