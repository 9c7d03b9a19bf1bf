package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bellybox/bellybox-api/internal/api/flash"
	"github.com/bellybox/bellybox-api/internal/api/metrics"
)

const (
	// AuthStatusHeader tells clients following a redirect why the gate
	// turned them away: 401 for no session, 403 for the wrong role.
	AuthStatusHeader = "X-Auth-Status"

	LoginPath = "/login"
)

// RequireAuth redirects anonymous requests to the login page.
func RequireAuth(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := IdentityFrom(c); ok {
				return next(c)
			}
			return denyUnauthenticated(c, log, "")
		}
	}
}

func denyUnauthenticated(c echo.Context, log zerolog.Logger, dashboard string) error {
	metrics.AccessDeniedTotal.WithLabelValues("unauthenticated", dashboard).Inc()
	log.Warn().
		Str("path", c.Request().URL.Path).
		Str("remote_ip", c.RealIP()).
		Msg("unauthenticated request to gated route")

	c.Response().Header().Set(AuthStatusHeader, strconv.Itoa(http.StatusUnauthorized))
	return flash.Redirect(c, LoginPath, flash.Info, "Please log in to access this page.")
}
