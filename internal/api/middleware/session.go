package middleware

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/infrastructure/backend"
)

// UserKey is where Session stores the signed-in user.
const UserKey = "user"

// Freshener expires a session whose token has run out.
type Freshener interface {
	SessionSource
	EnsureFresh(ctx context.Context, now time.Time) bool
}

// Session forwards the request id to backend calls, expires a session whose
// token has passed its exp claim, and exposes the user to handlers.
func Session(sessions Freshener, now func() time.Time) echo.MiddlewareFunc {
	if now == nil {
		now = time.Now
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := req.Context()
			if rid := c.Response().Header().Get(echo.HeaderXRequestID); rid != "" {
				ctx = backend.WithRequestID(ctx, rid)
				c.SetRequest(req.WithContext(ctx))
			}

			if sessions.EnsureFresh(ctx, now()) {
				if u := sessions.Current().User; u != nil {
					c.Set(UserKey, *u)
				}
			}
			return next(c)
		}
	}
}

// CurrentUser returns the user Session stored for this request.
func CurrentUser(c echo.Context) (domain.User, bool) {
	u, ok := c.Get(UserKey).(domain.User)
	return u, ok
}
