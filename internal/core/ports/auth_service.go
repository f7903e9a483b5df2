package ports

import (
	"context"

	"github.com/99minutos/membership-site/internal/core/domain"
)

// SignupInput is an already validated and normalized signup payload.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is returned by a successful signup or login.
type AuthResult struct {
	SessionID string
	Claim     domain.SessionClaim
}

// AuthService covers the credential and session lifecycle.
type AuthService interface {
	// Signup and Login destroy previousSessionID (when non-empty) before
	// issuing a fresh session.
	Signup(ctx context.Context, in SignupInput, previousSessionID string) (*AuthResult, error)
	Login(ctx context.Context, email, password, previousSessionID string) (*AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
	// Session returns (nil, nil) for anonymous requests.
	Session(ctx context.Context, sessionID string) (*domain.SessionClaim, error)
}
