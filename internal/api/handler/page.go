package handler

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/99minutos/membership-site/internal/api/middleware"
	"github.com/99minutos/membership-site/internal/view"
)

// newPage fills the fields every template needs from the request context.
func newPage(c echo.Context, title string) view.Page {
	p := view.Page{Title: title, CSRF: csrfToken(c)}
	if claim := middleware.ClaimFrom(c); claim != nil {
		p.Name = claim.Name
		p.IsAdmin = claim.IsAdmin()
	}
	return p
}

func csrfToken(c echo.Context) string {
	token, _ := c.Get(echomiddleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
