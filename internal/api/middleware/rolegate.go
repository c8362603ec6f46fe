package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/core/service"
	"github.com/carenet/portal/internal/infrastructure/metrics"
)

// SessionSource is what the gate reads the current session from.
type SessionSource interface {
	Current() domain.Session
}

// RoleGate admits a request only when the signed-in user holds one of roles.
// Denied browser requests are redirected to the landing route without
// reaching the handler; JSON clients get 401 (no session) or 403 with the
// same Location.
func RoleGate(sessions SessionSource, area string, roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := sessions.Current()
			if service.Admit(s.User, roles...) {
				metrics.RoleGateDecisionsTotal.WithLabelValues(area, "admit").Inc()
				return next(c)
			}
			metrics.RoleGateDecisionsTotal.WithLabelValues(area, "deny").Inc()

			if !wantsJSON(c.Request()) {
				return c.Redirect(http.StatusFound, service.LandingRoute)
			}
			c.Response().Header().Set(echo.HeaderLocation, service.LandingRoute)
			if !s.Authenticated() {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "sign in required"})
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) ||
		strings.HasPrefix(r.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}
