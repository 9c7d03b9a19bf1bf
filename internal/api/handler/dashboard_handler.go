package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/bellybox/bellybox-api/internal/core/domain"
)

type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// Index is the public landing page.
//
// @Summary      Landing page
// @Tags         pages
// @Produce      json
// @Success      200  {object}  pageView
// @Router       / [get]
func (h *DashboardHandler) Index(c echo.Context) error {
	return render(c, "index")
}

// Show returns the handler serving dashboard d. Access is enforced by the
// RBAC middleware mounted on the route.
//
// @Summary      Role dashboard
// @Tags         pages
// @Produce      json
// @Success      200  {object}  pageView
// @Failure      303  "Redirect to /login (X-Auth-Status 401 or 403)"
// @Router       /admin/dashboard [get]
// @Router       /customer/dashboard [get]
// @Router       /delivery/dashboard [get]
func (h *DashboardHandler) Show(d domain.Dashboard) echo.HandlerFunc {
	page := string(d)
	return func(c echo.Context) error {
		return render(c, page)
	}
}
