package domain

import (
	"strings"
	"time"
)

// User is a persisted account in the credential store.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated subject bound to a session.
type Identity struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Identity projects the user onto the subject carried by a session.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
}

// NormalizeEmail is applied before every store write and lookup so that the
// uniqueness constraint is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
