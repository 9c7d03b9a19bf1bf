package ports

import (
	"context"
	"time"

	"github.com/bellybox/bellybox-api/internal/core/domain"
)

// SessionManager binds identities to opaque tokens across requests.
type SessionManager interface {
	Start(ctx context.Context, id domain.Identity) (string, error)
	// Current resolves token to its identity. Absent, malformed, tampered,
	// expired and ended tokens all yield domain.ErrUnauthenticated.
	Current(ctx context.Context, token string) (domain.Identity, error)
	End(ctx context.Context, token string) error
}

// SessionStore keeps the server-side half of a session.
type SessionStore interface {
	Save(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error
	// Lookup returns domain.ErrSessionNotFound once the session is gone.
	Lookup(ctx context.Context, sessionID string) (int64, error)
	Delete(ctx context.Context, sessionID string) error
}
