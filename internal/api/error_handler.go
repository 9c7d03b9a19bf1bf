package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler renders whatever escapes the handlers. Domain failures
// are turned into redirects with a flash notice before they get here, so only
// Echo's own errors (unknown route, bad method, bind failures) and unexpected
// infrastructure errors arrive. The latter are logged and answered with a
// generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)})
			return
		}

		log.Error().
			Err(err).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("unhandled error")
		_ = c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
