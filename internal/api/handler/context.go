package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/bellybox/bellybox-api/internal/api/middleware"
	"github.com/bellybox/bellybox-api/internal/core/domain"
)

// Identity returns the identity resolved by the session middleware. Handlers
// behind RequireAuth or RBAC can rely on ok being true.
func Identity(c echo.Context) (domain.Identity, bool) {
	return middleware.IdentityFrom(c)
}
