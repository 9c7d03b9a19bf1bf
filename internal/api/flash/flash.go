// Package flash carries one-shot notices across a redirect in a cookie.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

const CookieName = "bellybox_flash"

type Category string

const (
	Success Category = "success"
	Info    Category = "info"
	Danger  Category = "danger"
)

// Notice is the message shown once on the next page view.
type Notice struct {
	Message  string   `json:"message"`
	Category Category `json:"category"`
}

// Set stores n for the next request, replacing any pending notice.
func Set(c echo.Context, n Notice) {
	raw, err := json.Marshal(n)
	if err != nil {
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the pending notice, if any, and clears it. A cookie that does
// not decode is discarded.
func Pop(c echo.Context) *Notice {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var n Notice
	if err := json.Unmarshal(raw, &n); err != nil || n.Message == "" {
		return nil
	}
	return &n
}

// Redirect queues a notice and answers 303 See Other to path.
func Redirect(c echo.Context, path string, category Category, message string) error {
	Set(c, Notice{Message: message, Category: category})
	return c.Redirect(http.StatusSeeOther, path)
}
