package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded payload of a bearer token. It is derived from the
// raw token for display and claims extraction only; nothing in this package
// verifies signatures, trust is established server side.
type Claims struct {
	jwt.RegisteredClaims
	UID      string `json:"uid,omitempty"`
	UserRole string `json:"role,omitempty"`
	Name     string `json:"username,omitempty"`
}

// UserID returns the uid claim, falling back to the subject.
func (c *Claims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// Role returns the role claim.
func (c *Claims) Role() string {
	return c.UserRole
}

// Username returns the username claim.
func (c *Claims) Username() string {
	return c.Name
}

// Expires returns the expiration time, or the zero time when the token
// carries no exp claim.
func (c *Claims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IsExpired reports whether the token expired before now. Tokens without an
// exp claim never count as expired.
func (c *Claims) IsExpired(now time.Time) bool {
	exp := c.Expires()
	if exp.IsZero() {
		return false
	}
	return exp.Before(now)
}
