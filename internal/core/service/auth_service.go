package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/membership-site/internal/core/domain"
	"github.com/99minutos/membership-site/internal/core/ports"
)

type authService struct {
	users    ports.UserRepository
	sessions ports.SessionStore
	hasher   ports.PasswordHasher
	log      zerolog.Logger
}

// NewAuthService returns an AuthService implementation.
func NewAuthService(
	users ports.UserRepository,
	sessions ports.SessionStore,
	hasher ports.PasswordHasher,
	log zerolog.Logger,
) ports.AuthService {
	return &authService{users: users, sessions: sessions, hasher: hasher, log: log}
}

// Signup stores a new member with the user role and signs them in.
func (s *authService) Signup(ctx context.Context, in ports.SignupInput, previousSessionID string) (*ports.AuthResult, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	created, err := s.users.Insert(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("signup: %w", err)
	}

	s.log.Info().Str("email", created.Email).Msg("member registered")
	return s.issue(ctx, created, previousSessionID)
}

// Login checks the credentials and binds a fresh session to the member.
func (s *authService) Login(ctx context.Context, email, password, previousSessionID string) (*ports.AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}

	return s.issue(ctx, user, previousSessionID)
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSessionStore, err)
	}
	return nil
}

func (s *authService) Session(ctx context.Context, sessionID string) (*domain.SessionClaim, error) {
	if sessionID == "" {
		return nil, nil
	}
	claim, err := s.sessions.Read(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSessionStore, err)
	}
	return claim, nil
}

// issue rotates the session id: the previous session is dropped and a new
// one is created from the current user record.
func (s *authService) issue(ctx context.Context, user *domain.User, previousSessionID string) (*ports.AuthResult, error) {
	if previousSessionID != "" {
		if err := s.sessions.Destroy(ctx, previousSessionID); err != nil {
			s.log.Warn().Err(err).Msg("failed to drop previous session")
		}
	}

	claim := domain.NewSessionClaim(user)
	id, err := s.sessions.Create(ctx, claim)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSessionStore, err)
	}
	return &ports.AuthResult{SessionID: id, Claim: claim}, nil
}

// upgradeHash re-hashes with the current cost. Only the hash is written, so a
// role change made since the record was read survives. Failures only cost us
// the upgrade, never the login.
func (s *authService) upgradeHash(ctx context.Context, user *domain.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Warn().Err(err).Str("email", user.Email).Msg("password rehash failed")
		return
	}
	if err := s.users.UpdatePasswordHash(ctx, user.Email, hash); err != nil {
		s.log.Warn().Err(err).Str("email", user.Email).Msg("failed to store upgraded hash")
		return
	}
	s.log.Debug().Str("email", user.Email).Msg("password hash upgraded")
}
