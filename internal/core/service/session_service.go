package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bellybox/bellybox-api/internal/core/domain"
	"github.com/bellybox/bellybox-api/internal/core/ports"
)

const defaultSessionTTL = 24 * time.Hour

var sessionSigningMethod = jwt.SigningMethodHS256

// SessionConfig holds the signing parameters for session tokens.
type SessionConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// SessionManager issues signed session tokens whose server-side record lives in
// a SessionStore. A token is valid only while its signature checks out, it has
// not expired and its record still exists; ending a session deletes the record.
type SessionManager struct {
	store  ports.SessionStore
	users  ports.UserRepository
	secret []byte
	issuer string
	ttl    time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

func NewSessionManager(store ports.SessionStore, users ports.UserRepository, cfg SessionConfig, log zerolog.Logger) (*SessionManager, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if cfg.Secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionManager{
		store:  store,
		users:  users,
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		log:    log,
		now:    time.Now,
	}, nil
}

// TTL is the lifetime given to new sessions.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Start opens a session for id and returns its token.
func (m *SessionManager) Start(ctx context.Context, id domain.Identity) (string, error) {
	if id.UserID == 0 {
		return "", fmt.Errorf("start session: missing user id")
	}

	sessionID := uuid.NewString()
	if err := m.store.Save(ctx, sessionID, id.UserID, m.ttl); err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}

	now := m.now()
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Subject:   strconv.FormatInt(id.UserID, 10),
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	signed, err := jwt.NewWithClaims(sessionSigningMethod, claims).SignedString(m.secret)
	if err != nil {
		_ = m.store.Delete(ctx, sessionID)
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Current resolves token to the identity it was issued for. The role is read
// from the credential store on every call rather than trusted from the token.
func (m *SessionManager) Current(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	claims, err := m.parse(token, true)
	if err != nil {
		m.log.Debug().Err(err).Msg("session token rejected")
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.ID == "" {
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	stored, err := m.store.Lookup(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.Identity{}, domain.ErrUnauthenticated
		}
		return domain.Identity{}, fmt.Errorf("lookup session: %w", err)
	}
	if stored != userID {
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Identity{}, domain.ErrUnauthenticated
		}
		return domain.Identity{}, fmt.Errorf("load session user: %w", err)
	}
	return user.Identity(), nil
}

// End deletes the session record. Ending an unknown or already ended session
// is not an error; a token that was never signed by us is ignored.
func (m *SessionManager) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := m.parse(token, false)
	if err != nil || claims.ID == "" {
		return nil
	}
	if err := m.store.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

func (m *SessionManager) parse(token string, validateClaims bool) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{sessionSigningMethod.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if validateClaims {
		opts = append(opts, jwt.WithExpirationRequired())
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}
