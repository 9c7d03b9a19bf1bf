package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bellybox/bellybox-api/internal/core/domain"
	"github.com/bellybox/bellybox-api/internal/core/ports"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "bellybox_session"

const (
	identityKey = "identity"
	tokenKey    = "session_token"
)

// Session resolves the request's session token and stores the identity in the
// context. The cookie is tried first; a stale cookie is cleared and the
// Authorization: Bearer header, if any, is tried next.
// Requests without a valid session continue anonymously; gating is left to
// RequireAuth and RBAC.
func Session(sessions ports.SessionManager, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookieToken, bearerToken := tokensFromRequest(c)

			if cookieToken != "" {
				if resolve(c, sessions, log, cookieToken) {
					return next(c)
				}
				ClearSessionCookie(c, false)
			}
			if bearerToken != "" && bearerToken != cookieToken {
				resolve(c, sessions, log, bearerToken)
			}
			return next(c)
		}
	}
}

// resolve looks token up and, when it is live, stores its identity.
func resolve(c echo.Context, sessions ports.SessionManager, log zerolog.Logger, token string) bool {
	id, err := sessions.Current(c.Request().Context(), token)
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthenticated) {
			log.Error().Err(err).Str("path", c.Path()).Msg("session lookup failed")
		}
		return false
	}
	c.Set(identityKey, id)
	c.Set(tokenKey, token)
	return true
}

// IdentityFrom returns the identity placed by Session, if any.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(identityKey).(domain.Identity)
	return id, ok
}

// TokenFrom returns the validated session token, or "" for anonymous requests.
func TokenFrom(c echo.Context) string {
	token, _ := c.Get(tokenKey).(string)
	return token
}

// SetSessionCookie writes the session cookie. secure marks it HTTPS-only.
func SetSessionCookie(c echo.Context, token string, maxAge int, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(c echo.Context, secure bool) {
	SetSessionCookie(c, "", -1, secure)
}

func tokensFromRequest(c echo.Context) (cookieToken, bearerToken string) {
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		cookieToken = cookie.Value
	}

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		bearerToken = strings.TrimSpace(parts[1])
	}
	return cookieToken, bearerToken
}
