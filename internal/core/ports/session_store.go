package ports

import (
	"context"

	"github.com/99minutos/membership-site/internal/core/domain"
)

// SessionStore keeps session claims server-side, keyed by an opaque id.
// Entries expire a fixed duration after Create.
type SessionStore interface {
	Create(ctx context.Context, claim domain.SessionClaim) (string, error)
	// Read returns (nil, nil) for unknown or expired ids.
	Read(ctx context.Context, id string) (*domain.SessionClaim, error)
	Destroy(ctx context.Context, id string) error
}
