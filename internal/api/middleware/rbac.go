package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bellybox/bellybox-api/internal/api/flash"
	"github.com/bellybox/bellybox-api/internal/api/metrics"
	"github.com/bellybox/bellybox-api/internal/core/domain"
	"github.com/bellybox/bellybox-api/internal/core/ports"
)

// MismatchPolicy selects where an authenticated user is sent when they open
// a dashboard that belongs to another role.
type MismatchPolicy string

const (
	MismatchToLogin     MismatchPolicy = "login"
	MismatchToDashboard MismatchPolicy = "dashboard"
)

// ParseMismatchPolicy accepts "login" (the default when empty) or "dashboard".
func ParseMismatchPolicy(value string) (MismatchPolicy, error) {
	switch MismatchPolicy(value) {
	case "", MismatchToLogin:
		return MismatchToLogin, nil
	case MismatchToDashboard:
		return MismatchToDashboard, nil
	}
	return "", fmt.Errorf("unknown role mismatch policy %q", value)
}

// RBAC admits only identities whose role owns dashboard d. Anonymous
// requests are treated as RequireAuth would; the session is never ended on
// a mismatch.
func RBAC(d domain.Dashboard, policy MismatchPolicy, audit ports.AuditRecorder, log zerolog.Logger) echo.MiddlewareFunc {
	required := d.RequiredRole()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return denyUnauthenticated(c, log, string(d))
			}
			if domain.CanAccess(id, d) {
				return next(c)
			}

			metrics.AccessDeniedTotal.WithLabelValues("role_mismatch", string(d)).Inc()
			log.Warn().
				Int64("user_id", id.UserID).
				Str("role", id.Role.String()).
				Str("dashboard", string(d)).
				Msg("role mismatch")
			if audit != nil {
				audit.Record(domain.AuthEvent{
					Kind:       domain.AuthEventAccessDenied,
					UserID:     id.UserID,
					Reason:     fmt.Sprintf("role %s cannot open %s (requires %s)", id.Role, d, required),
					RemoteIP:   c.RealIP(),
					OccurredAt: time.Now().UTC(),
				})
			}

			c.Response().Header().Set(AuthStatusHeader, strconv.Itoa(http.StatusForbidden))
			return flash.Redirect(c, mismatchTarget(id, policy), flash.Danger, "You do not have access to that page.")
		}
	}
}

func mismatchTarget(id domain.Identity, policy MismatchPolicy) string {
	if policy == MismatchToDashboard {
		if own, err := domain.RouteAfterLogin(id); err == nil {
			return own.Path()
		}
	}
	return LoginPath
}
