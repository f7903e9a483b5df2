package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/membership-site/internal/api/cookie"
	"github.com/99minutos/membership-site/internal/core/domain"
	"github.com/99minutos/membership-site/internal/core/ports"
)

const (
	ctxKeyClaim     = "session.claim"
	ctxKeySessionID = "session.id"
)

// Session resolves the session cookie into a claim and stores both on the
// echo context. Requests without a live session continue as anonymous; a
// cookie pointing at an unknown or expired session is cleared.
func Session(auth ports.AuthService, codec *cookie.Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := codec.Read(c)
			if sid == "" {
				return next(c)
			}

			claim, err := auth.Session(c.Request().Context(), sid)
			if err != nil {
				return err
			}
			if claim == nil {
				codec.Clear(c)
				return next(c)
			}

			c.Set(ctxKeyClaim, claim)
			c.Set(ctxKeySessionID, sid)
			return next(c)
		}
	}
}

// ClaimFrom returns the claim loaded by Session, or nil for anonymous requests.
func ClaimFrom(c echo.Context) *domain.SessionClaim {
	claim, _ := c.Get(ctxKeyClaim).(*domain.SessionClaim)
	return claim
}

// SessionIDFrom returns the id of the live session, or "".
func SessionIDFrom(c echo.Context) string {
	sid, _ := c.Get(ctxKeySessionID).(string)
	return sid
}

// WithClaim attaches claim to c as Session would. Used by tests of
// downstream handlers.
func WithClaim(c echo.Context, sessionID string, claim *domain.SessionClaim) {
	c.Set(ctxKeyClaim, claim)
	c.Set(ctxKeySessionID, sessionID)
}
