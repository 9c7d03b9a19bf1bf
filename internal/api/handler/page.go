package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bellybox/bellybox-api/internal/api/flash"
	"github.com/bellybox/bellybox-api/internal/core/domain"
)

// pageView is what a page template would receive.
type pageView struct {
	Page  string           `json:"page"`
	Flash *flash.Notice    `json:"flash,omitempty"`
	User  *domain.Identity `json:"user,omitempty"`
}

// render answers with the page view, consuming any pending flash notice.
func render(c echo.Context, page string) error {
	view := pageView{Page: page, Flash: flash.Pop(c)}
	if id, ok := Identity(c); ok {
		view.User = &id
	}
	return c.JSON(http.StatusOK, view)
}
