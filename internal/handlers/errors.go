package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mrskaggs/forkful/backend/internal/apperrors"
)

// httpError converts a service error into the structured REST error shape.
// Internal detail never leaks: transient errors surface a generic message.
func httpError(err error) error {
	if appErr := apperrors.As(err); appErr != nil {
		return echo.NewHTTPError(appErr.HTTPStatus(), echo.Map{
			"code":    appErr.Code,
			"message": appErr.Message,
		})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, echo.Map{
		"code":    "internal_error",
		"message": "internal server error",
	})
}
