package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/membership-site/internal/core/domain"
)

// RequireSession redirects anonymous requests to redirectTo.
func RequireSession(redirectTo string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ClaimFrom(c) == nil {
				return c.Redirect(http.StatusFound, redirectTo)
			}
			return next(c)
		}
	}
}

// RBAC enforces role-based access control on the session claim. Anonymous
// requests are sent to loginPath; authenticated ones without an allowed role
// fail with domain.ErrForbidden.
func RBAC(loginPath string, allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claim := ClaimFrom(c)
			if claim == nil {
				return c.Redirect(http.StatusFound, loginPath)
			}
			if _, ok := allowed[claim.Role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// RequireAdmin is the admin gate.
func RequireAdmin(loginPath string) echo.MiddlewareFunc {
	return RBAC(loginPath, domain.RoleAdmin)
}
