package ratelimit

import (
	"github.com/labstack/echo/v4"
)

// ByIP throttles requests per client IP. onLimit writes the rejection.
func ByIP(l *Limiter, onLimit echo.HandlerFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP()) {
				return onLimit(c)
			}
			return next(c)
		}
	}
}
