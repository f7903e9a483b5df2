package ports

import (
	"context"

	"github.com/99minutos/membership-site/internal/core/domain"
)

// UserService covers record maintenance and the admin-only role operations.
type UserService interface {
	// Save persists user, hashing PasswordHash first unless it already holds
	// an encoded hash.
	Save(ctx context.Context, user *domain.User) error
	List(ctx context.Context, caller *domain.SessionClaim) ([]*domain.User, error)
	SetRole(ctx context.Context, caller *domain.SessionClaim, email string, role domain.Role) error
	EnsureAdmin(ctx context.Context, name, email, password string) error
}
