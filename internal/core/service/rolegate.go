package service

import (
	"slices"

	"github.com/carenet/portal/internal/core/domain"
)

// LandingRoute is where a denied navigation is sent to pick the right area.
const LandingRoute = "/dashboard"

// Admit reports whether user may enter an area restricted to roles. It fails
// closed: no user, or an empty role set, denies.
func Admit(user *domain.User, roles ...domain.Role) bool {
	if user == nil || len(roles) == 0 {
		return false
	}
	return slices.Contains(roles, user.Role)
}

// Landing returns the route a session should be sent to from the landing
// page: the role's home when signed in, the login page otherwise.
func Landing(s domain.Session) string {
	if !s.Authenticated() {
		return "/login"
	}
	return s.User.Role.Home()
}
