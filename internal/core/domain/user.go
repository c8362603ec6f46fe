package domain

import (
	"fmt"
	"strings"
)

// Role selects which portal area (and which backend endpoints) a session may use.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleCaregiver  Role = "CAREGIVER"
	RoleCareSeeker Role = "CARE_SEEKER"
)

// Roles lists every known role.
var Roles = []Role{RoleAdmin, RoleCaregiver, RoleCareSeeker}

// ParseRole accepts the backend spelling of a role. Unknown values are rejected.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// Valid reports whether r is one of the closed set of roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCaregiver, RoleCareSeeker:
		return true
	}
	return false
}

// Home returns the route of the role's portal area.
func (r Role) Home() string {
	switch r {
	case RoleAdmin:
		return "/admin"
	case RoleCaregiver:
		return "/caregiver"
	case RoleCareSeeker:
		return "/careseeker"
	}
	return "/login"
}

// User is the identity attached to an authenticated session.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// DisplayName joins first and last name, falling back to the email.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// ProfileUpdate carries the user fields a caller wants to merge into the
// current session. Nil fields are left untouched.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// Apply returns a copy of u with the non-nil fields of p merged in.
func (p ProfileUpdate) Apply(u User) User {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	return u
}

// Session is the client-side authentication state.
//
// Token and User are either both set or both empty.
type Session struct {
	Token   string `json:"-"`
	User    *User  `json:"user,omitempty"`
	Loading bool   `json:"loading"`
}

// Authenticated reports whether the session holds a credential.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// Role returns the session's role, or "" when signed out.
func (s Session) Role() Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// Clone returns a deep copy so callers cannot mutate the manager's user.
func (s Session) Clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
