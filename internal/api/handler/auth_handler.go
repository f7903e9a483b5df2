package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/membership-site/internal/api/cookie"
	"github.com/99minutos/membership-site/internal/api/metrics"
	"github.com/99minutos/membership-site/internal/api/middleware"
	"github.com/99minutos/membership-site/internal/core/domain"
	"github.com/99minutos/membership-site/internal/core/ports"
	"github.com/99minutos/membership-site/internal/core/validation"
	"github.com/99minutos/membership-site/internal/view"
)

const (
	msgSignupDuplicate = "Signup failed: email already registered"
	msgSignupFailed    = "Signup failed. Please try again later."
	msgEmailNotFound   = "Email not found"
	msgBadPassword     = "Incorrect password"
	msgLoginFailed     = "Something went wrong"
)

type AuthHandler struct {
	authService ports.AuthService
	validator   *validation.Validator
	cookies     *cookie.Codec
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, v *validation.Validator, cookies *cookie.Codec, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, validator: v, cookies: cookies, log: log}
}

func (h *AuthHandler) SignupForm(c echo.Context) error {
	return c.Render(http.StatusOK, view.PageSignup, newPage(c, "Sign Up"))
}

func (h *AuthHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, view.PageLogin, newPage(c, "Login"))
}

// SignupSubmit registers a member and signs them in. Every failure
// re-renders the form with a single message.
func (h *AuthHandler) SignupSubmit(c echo.Context) error {
	var form validation.SignupForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	p := newPage(c, "Sign Up")
	p.Form = view.FormValues{Name: form.Name, Email: form.Email}

	in, err := h.validator.Signup(form)
	if err != nil {
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		metrics.SignupsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		p.Error = ve.Message
		return c.Render(http.StatusBadRequest, view.PageSignup, p)
	}

	res, err := h.authService.Signup(c.Request().Context(), in, middleware.SessionIDFrom(c))
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.SignupsTotal.WithLabelValues(metrics.ResultConflict).Inc()
			p.Error = msgSignupDuplicate
			return c.Render(http.StatusConflict, view.PageSignup, p)
		}
		metrics.SignupsTotal.WithLabelValues(metrics.ResultError).Inc()
		h.log.Error().Err(err).Msg("signup failed")
		p.Error = msgSignupFailed
		return c.Render(http.StatusInternalServerError, view.PageSignup, p)
	}

	if err := h.cookies.Write(c, res.SessionID); err != nil {
		return err
	}
	metrics.SignupsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	metrics.SessionsCreatedTotal.Inc()
	return c.Redirect(http.StatusFound, "/members")
}

// LoginSubmit checks credentials and signs the member in. The submitted
// email is kept on the re-rendered form.
func (h *AuthHandler) LoginSubmit(c echo.Context) error {
	var form validation.LoginForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	p := newPage(c, "Login")
	p.Form = view.FormValues{Email: form.Email}

	creds, err := h.validator.Login(form)
	if err != nil {
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		metrics.LoginsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		p.Error = ve.Message
		return c.Render(http.StatusBadRequest, view.PageLogin, p)
	}

	res, err := h.authService.Login(c.Request().Context(), creds.Email, creds.Password, middleware.SessionIDFrom(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			metrics.LoginsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
			p.Error = msgEmailNotFound
			return c.Render(http.StatusUnauthorized, view.PageLogin, p)
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
			p.Error = msgBadPassword
			return c.Render(http.StatusUnauthorized, view.PageLogin, p)
		}
		metrics.LoginsTotal.WithLabelValues(metrics.ResultError).Inc()
		h.log.Error().Err(err).Msg("login failed")
		p.Error = msgLoginFailed
		return c.Render(http.StatusInternalServerError, view.PageLogin, p)
	}

	if err := h.cookies.Write(c, res.SessionID); err != nil {
		return err
	}
	metrics.LoginsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	metrics.SessionsCreatedTotal.Inc()
	return c.Redirect(http.StatusFound, "/members")
}

// Logout drops the session and always lands on the home page.
func (h *AuthHandler) Logout(c echo.Context) error {
	if sid := h.cookies.Read(c); sid != "" {
		if err := h.authService.Logout(c.Request().Context(), sid); err != nil {
			h.log.Warn().Err(err).Msg("logout: session not destroyed")
		}
	}
	h.cookies.Clear(c)
	return c.Redirect(http.StatusFound, "/")
}
