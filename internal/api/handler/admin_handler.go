package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/membership-site/internal/api/metrics"
	"github.com/99minutos/membership-site/internal/api/middleware"
	"github.com/99minutos/membership-site/internal/core/domain"
	"github.com/99minutos/membership-site/internal/core/ports"
	"github.com/99minutos/membership-site/internal/view"
)

// AdminHandler serves the admin panel. Every route must sit behind
// middleware.RequireAdmin; the service re-checks the caller's role.
type AdminHandler struct {
	userService ports.UserService
}

func NewAdminHandler(userService ports.UserService) *AdminHandler {
	return &AdminHandler{userService: userService}
}

type roleChange struct {
	Email  string
	Role   domain.Role
	Action string
}

// Panel lists every member with their role.
func (h *AdminHandler) Panel(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context(), middleware.ClaimFrom(c))
	if err != nil {
		return err
	}
	p := newPage(c, "Admin Panel")
	p.Data = users
	return c.Render(http.StatusOK, view.PageAdmin, p)
}

// ConfirmRole renders the confirmation form for a role change. It never
// mutates anything.
func (h *AdminHandler) ConfirmRole(role domain.Role) echo.HandlerFunc {
	title := "Demote user"
	if role == domain.RoleAdmin {
		title = "Promote user"
	}
	return func(c echo.Context) error {
		email := targetEmail(c)
		p := newPage(c, title)
		p.Data = roleChange{Email: email, Role: role, Action: roleAction(role, email)}
		return c.Render(http.StatusOK, view.PageConfirmRole, p)
	}
}

// ChangeRole applies a confirmed role change and returns to the panel.
func (h *AdminHandler) ChangeRole(role domain.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := h.userService.SetRole(c.Request().Context(), middleware.ClaimFrom(c), targetEmail(c), role)
		if err != nil {
			return err
		}
		metrics.RoleChangesTotal.WithLabelValues(string(role)).Inc()
		return c.Redirect(http.StatusSeeOther, "/admin")
	}
}

func targetEmail(c echo.Context) string {
	raw := c.Param("email")
	// Echo matches on RawPath when the request has one, leaving params
	// escaped. Otherwise they come from the already decoded Path.
	if c.Request().URL.RawPath != "" {
		if email, err := url.PathUnescape(raw); err == nil {
			raw = email
		}
	}
	return strings.ToLower(strings.TrimSpace(raw))
}

func roleAction(role domain.Role, email string) string {
	verb := "/demote/"
	if role == domain.RoleAdmin {
		verb = "/promote/"
	}
	return verb + url.PathEscape(email)
}
