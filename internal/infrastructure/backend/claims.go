package backend

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ClaimsInspector reads the exp claim of the backend's bearer tokens. The
// signature is not checked: the portal does not hold the signing key and
// only uses exp to drop a session early.
type ClaimsInspector struct {
	parser *jwt.Parser
}

func NewClaimsInspector() *ClaimsInspector {
	return &ClaimsInspector{parser: jwt.NewParser()}
}

// ExpiresAt returns the token's expiry; ok is false for opaque tokens and
// tokens without exp.
func (i *ClaimsInspector) ExpiresAt(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := i.parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
