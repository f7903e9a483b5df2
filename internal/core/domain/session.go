package domain

import (
	"errors"
	"time"
)

// ErrSessionStore wraps any failure of the session backend. It is fatal to
// the request that hit it but never to the process.
var ErrSessionStore = errors.New("session store unavailable")

// SessionClaim is the point-in-time identity snapshot bound to a session id.
// It is built from the user record when the session is created and is not
// refreshed afterwards, so Role may lag behind the persisted role.
type SessionClaim struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
	Role  Role   `json:"role" bson:"role"`
}

// NewSessionClaim copies the identity fields of a trusted user record.
func NewSessionClaim(u *User) SessionClaim {
	return SessionClaim{Name: u.Name, Email: u.Email, Role: u.Role}
}

// IsAdmin reports whether the claim carries the admin role.
func (c *SessionClaim) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

// Session is a stored claim together with its bookkeeping timestamps.
type Session struct {
	ID        string
	Claim     SessionClaim
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its fixed lifetime at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
