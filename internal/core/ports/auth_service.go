package ports

import (
	"context"

	"github.com/bellybox/bellybox-api/internal/core/domain"
)

// RegisterInput carries a self-registration. It has no role field: every
// registered account is a customer.
type RegisterInput struct {
	Username string
	Email    string
	Phone    string
	Password string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (int64, error)
	Authenticate(ctx context.Context, email, password string) (domain.Identity, error)
}
