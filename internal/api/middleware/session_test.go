package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carenet/portal/internal/core/domain"
)

type freshener struct {
	fixedSession
	fresh  bool
	called time.Time
}

func (f *freshener) EnsureFresh(_ context.Context, now time.Time) bool {
	f.called = now
	return f.fresh
}

func TestSession_ExposesUser(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	f := &freshener{fixedSession: signedIn(domain.RoleCaregiver), fresh: true}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Response().Header().Set(echo.HeaderXRequestID, "rid-1")

	handler := Session(f, func() time.Time { return now })(func(c echo.Context) error {
		u, ok := CurrentUser(c)
		if !ok || u.Email != "a@x.io" {
			t.Fatalf("user not set: %+v", u)
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !f.called.Equal(now) {
		t.Fatalf("EnsureFresh not consulted with the clock")
	}
}

func TestSession_ExpiredTokenLeavesNoUser(t *testing.T) {
	f := &freshener{fixedSession: signedIn(domain.RoleCaregiver), fresh: false}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Session(f, nil)(func(c echo.Context) error {
		called = true
		if _, ok := CurrentUser(c); ok {
			t.Fatalf("expired session exposed a user")
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}
