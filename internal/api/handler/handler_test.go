package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/membership-site/internal/api/cookie"
	"github.com/99minutos/membership-site/internal/core/domain"
	"github.com/99minutos/membership-site/internal/core/ports"
	"github.com/99minutos/membership-site/internal/view"
)

type stubAuthService struct {
	signupRes  *ports.AuthResult
	signupErr  error
	loginRes   *ports.AuthResult
	loginErr   error
	logoutErr  error
	gotSignup  ports.SignupInput
	gotEmail   string
	gotPrevSID string
	loggedOut  []string
}

func (s *stubAuthService) Signup(_ context.Context, in ports.SignupInput, prev string) (*ports.AuthResult, error) {
	s.gotSignup = in
	s.gotPrevSID = prev
	return s.signupRes, s.signupErr
}

func (s *stubAuthService) Login(_ context.Context, email, _ string, prev string) (*ports.AuthResult, error) {
	s.gotEmail = email
	s.gotPrevSID = prev
	return s.loginRes, s.loginErr
}

func (s *stubAuthService) Logout(_ context.Context, sid string) error {
	s.loggedOut = append(s.loggedOut, sid)
	return s.logoutErr
}

func (s *stubAuthService) Session(context.Context, string) (*domain.SessionClaim, error) {
	return nil, nil
}

type stubUserService struct {
	users    []*domain.User
	err      error
	setCalls []string
}

func (s *stubUserService) Save(context.Context, *domain.User) error { return nil }

func (s *stubUserService) List(_ context.Context, caller *domain.SessionClaim) ([]*domain.User, error) {
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.users, s.err
}

func (s *stubUserService) SetRole(_ context.Context, caller *domain.SessionClaim, email string, role domain.Role) error {
	if !caller.IsAdmin() {
		return domain.ErrForbidden
	}
	if s.err != nil {
		return s.err
	}
	s.setCalls = append(s.setCalls, email+"="+string(role))
	return nil
}

func (s *stubUserService) EnsureAdmin(context.Context, string, string, string) error { return nil }

var testCodec = cookie.NewCodec(cookie.Options{Secret: "secret", TTL: time.Hour})

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	eng, err := view.NewEngine()
	if err != nil {
		t.Fatalf("view engine: %v", err)
	}
	e := echo.New()
	e.Renderer = eng
	return e
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == testCodec.Name() {
			return ck
		}
	}
	return nil
}

func quiet() zerolog.Logger { return zerolog.Nop() }

var (
	memberClaim = &domain.SessionClaim{Name: "Ann Lee", Email: "ann@example.com", Role: domain.RoleUser}
	adminClaim  = &domain.SessionClaim{Name: "Root", Email: "root@example.com", Role: domain.RoleAdmin}
)
