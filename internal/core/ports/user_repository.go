package ports

import (
	"context"

	"github.com/99minutos/membership-site/internal/core/domain"
)

// UserRepository defines persistence for member records. Email lookups are
// case-insensitive.
type UserRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no record matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Insert returns domain.ErrUserExists when the email is already taken.
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
	// Save replaces the record with the same email, creating it if absent.
	Save(ctx context.Context, user *domain.User) error
	// UpdateRole returns domain.ErrUserNotFound when no record matches.
	UpdateRole(ctx context.Context, email string, role domain.Role) error
	// UpdatePasswordHash replaces only the stored hash. It returns
	// domain.ErrUserNotFound when no record matches.
	UpdatePasswordHash(ctx context.Context, email, hash string) error
	List(ctx context.Context) ([]*domain.User, error)
}
