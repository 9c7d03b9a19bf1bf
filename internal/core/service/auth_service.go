package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bellybox/bellybox-api/internal/core/domain"
	"github.com/bellybox/bellybox-api/internal/core/ports"
)

// AuthService implements registration and credential verification.
type AuthService struct {
	repo   ports.UserRepository
	hasher *PasswordHasher
	log    zerolog.Logger
	now    func() time.Time
}

func NewAuthService(repo ports.UserRepository, hasher *PasswordHasher, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, log: log, now: time.Now}
}

// Register creates a customer account.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (int64, error) {
	user, err := s.create(ctx, in, domain.DefaultRole)
	if err != nil {
		return 0, err
	}
	s.log.Info().Int64("user_id", user.ID).Str("role", user.Role.String()).Msg("user registered")
	return user.ID, nil
}

// Authenticate verifies email and password against the credential store.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (domain.Identity, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.burn(password)
			return domain.Identity{}, domain.ErrInvalidCredentials
		}
		return domain.Identity{}, fmt.Errorf("authenticate: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}
	return user.Identity(), nil
}

// Provision creates an account with an explicit role for operator bootstrap.
// It is not reachable from any HTTP input. created is false when the email is
// already registered, in which case the existing account is left untouched.
func (s *AuthService) Provision(ctx context.Context, in ports.RegisterInput, role domain.Role) (id int64, created bool, err error) {
	if !role.IsValid() {
		return 0, false, fmt.Errorf("provision: %w: %q", domain.ErrInvalidRole, string(role))
	}
	user, err := s.create(ctx, in, role)
	if errors.Is(err, domain.ErrDuplicateEmail) {
		existing, findErr := s.repo.FindByEmail(ctx, domain.NormalizeEmail(in.Email))
		if findErr != nil {
			return 0, false, fmt.Errorf("provision: %w", findErr)
		}
		return existing.ID, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	s.log.Info().Int64("user_id", user.ID).Str("role", role.String()).Msg("account provisioned")
	return user.ID, true, nil
}

func (s *AuthService) create(ctx context.Context, in ports.RegisterInput, role domain.Role) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := domain.NormalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Phone:        strings.TrimSpace(in.Phone),
		CreatedAt:    s.now().UTC(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return created, nil
}
