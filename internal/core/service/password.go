package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/bellybox/bellybox-api/internal/core/domain"
)

// DefaultBcryptCost is used when no cost is configured.
const DefaultBcryptCost = 12

// PasswordHasher is the single hashing scheme shared by registration and
// login. bcrypt salts every hash and compares in constant time.
type PasswordHasher struct {
	cost  int
	decoy []byte
}

// NewPasswordHasher clamps cost into bcrypt's accepted range. The decoy hash is
// compared against when the email is unknown, so a miss costs as much as a
// wrong password.
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	switch {
	case cost == 0:
		cost = DefaultBcryptCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}

	seed := make([]byte, 16)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("decoy seed: %w", err)
	}
	decoy, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(seed)), cost)
	if err != nil {
		return nil, fmt.Errorf("decoy hash: %w", err)
	}
	return &PasswordHasher{cost: cost, decoy: decoy}, nil
}

// Cost returns the effective bcrypt cost.
func (h *PasswordHasher) Cost() int {
	return h.cost
}

// Hash returns the bcrypt encoding of password. Passwords over bcrypt's
// 72-byte limit are rejected as invalid input.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password longer than 72 bytes", domain.ErrInvalidInput)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether password matches the stored hash.
func (h *PasswordHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// burn spends one comparison against the decoy hash.
func (h *PasswordHasher) burn(password string) {
	_ = bcrypt.CompareHashAndPassword(h.decoy, []byte(password))
}
