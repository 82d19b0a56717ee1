package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"TrendWatch/internal/domain/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type stubAuth map[string]models.Identity

func (s stubAuth) Authenticate(_ context.Context, token string) (models.Identity, error) {
	if token == "broken" {
		return models.Identity{}, errors.New("redis down")
	}
	if id, ok := s[token]; ok {
		return id, nil
	}
	return models.Identity{}, models.ErrSessionNotFound
}

func newTestEcho() *echo.Echo {
	cookie := CookieConfig{Name: "tw", TTL: time.Hour}
	e := echo.New()
	e.Use(Session(stubAuth{"good": {UserID: 9, Username: "alice"}}, cookie, nil))

	g := e.Group("", RequireUser(func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/login")
	}))
	g.GET("/", func(c echo.Context) error {
		id, _ := IdentityFrom(c)
		return c.String(http.StatusOK, id.Username)
	})
	return e
}

func get(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "tw", Value: token})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSession_ValidCookie(t *testing.T) {
	rec := get(newTestEcho(), "good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
}

func TestSession_MissingCookieRedirects(t *testing.T) {
	rec := get(newTestEcho(), "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestSession_StaleCookieIsCleared(t *testing.T) {
	rec := get(newTestEcho(), "expired")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.Contains(rec.Header().Get("Set-Cookie"), "Max-Age=0"))
}

func TestSession_LookupFailureIsAnonymous(t *testing.T) {
	rec := get(newTestEcho(), "broken")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Empty(t, rec.Header().Get("Set-Cookie"))
}
