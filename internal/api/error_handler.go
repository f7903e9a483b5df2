package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/membership-site/internal/api/middleware"
	"github.com/99minutos/membership-site/internal/core/domain"
	"github.com/99minutos/membership-site/internal/view"
)

const (
	msgNotFound   = "The page you are looking for does not exist."
	msgForbidden  = "You are not authorized to view the admin page."
	msgSomething  = "Something went wrong. Please try again later."
	msgBadRequest = "The request could not be processed."
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the shared error page, keeping the navigation of the caller's session.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}

		page := view.Page{
			Title: fmt.Sprintf("%d %s", code, http.StatusText(code)),
			Error: msg,
		}
		if claim := middleware.ClaimFrom(c); claim != nil {
			page.Name = claim.Name
			page.IsAdmin = claim.IsAdmin()
		}
		if rerr := c.Render(code, view.PageError, page); rerr != nil {
			log.Error().Err(rerr).Msg("render error page")
			_ = c.String(code, msg)
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, msgForbidden
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found."
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest, msgBadRequest
	}

	// Echo's own errors (404 from router, CSRF rejections, bind failures).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound:
			return he.Code, msgNotFound
		case http.StatusInternalServerError:
			// fall through to logging below
		default:
			return he.Code, fmt.Sprintf("%v", he.Message)
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, msgSomething
}
