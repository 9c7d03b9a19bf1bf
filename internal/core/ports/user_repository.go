package ports

import (
	"context"

	"github.com/bellybox/bellybox-api/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// Create assigns the numeric ID and returns the stored user. A second user
	// with the same email fails with domain.ErrDuplicateEmail; the check is the
	// store's unique index, so concurrent registrations cannot both succeed.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}
