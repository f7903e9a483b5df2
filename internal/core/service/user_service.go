package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/membership-site/internal/core/domain"
	"github.com/99minutos/membership-site/internal/core/ports"
)

type userService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
}

// NewUserService returns a UserService implementation.
func NewUserService(users ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) ports.UserService {
	return &userService{users: users, hasher: hasher, log: log}
}

// Save persists u, hashing PasswordHash first unless it already holds a hash.
// Saving the same record twice never hashes a hash.
func (s *userService) Save(ctx context.Context, u *domain.User) error {
	if !s.hasher.IsHashed(u.PasswordHash) {
		hash, err := s.hasher.Hash(u.PasswordHash)
		if err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		u.PasswordHash = hash
	}
	if !u.Role.Valid() {
		u.Role = domain.RoleUser
	}
	return s.users.Save(ctx, u)
}

// List returns every member. Only admins may call it.
func (s *userService) List(ctx context.Context, caller *domain.SessionClaim) ([]*domain.User, error) {
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// SetRole changes the stored role of the member with the given email.
// Sessions already issued to that member keep their old role.
func (s *userService) SetRole(ctx context.Context, caller *domain.SessionClaim, email string, role domain.Role) error {
	if !caller.IsAdmin() {
		return domain.ErrForbidden
	}
	if !role.Valid() {
		return domain.ErrInvalidRole
	}
	if err := s.users.UpdateRole(ctx, email, role); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("set role: %w", err)
	}
	s.log.Info().
		Str("by", caller.Email).
		Str("email", email).
		Str("role", string(role)).
		Msg("role changed")
	return nil
}

// EnsureAdmin makes sure an admin account exists for email. An existing
// member is promoted and keeps their password; otherwise one is created.
func (s *userService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsAdmin() {
			return nil
		}
		existing.Role = domain.RoleAdmin
		if err := s.Save(ctx, existing); err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
		s.log.Info().Str("email", existing.Email).Msg("existing member promoted to admin")
		return nil
	case errors.Is(err, domain.ErrUserNotFound):
	default:
		return fmt.Errorf("ensure admin: %w", err)
	}

	if password == "" {
		return fmt.Errorf("ensure admin: %w", domain.ErrInvalidCredentials)
	}
	admin := &domain.User{Name: name, Email: email, PasswordHash: password, Role: domain.RoleAdmin}
	if err := s.Save(ctx, admin); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	s.log.Info().Str("email", admin.Email).Msg("admin account created")
	return nil
}
