package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/userkeeper/internal/common"
)

// ErrorResponse is the standard API error body (message only).
type ErrorResponse struct {
	Message string `json:"message"`
}

// httpError maps a service error onto the HTTP status contract. Anything the
// mapping does not recognize becomes an opaque 500.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, common.ErrorInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, common.ErrorInvalidCredentials.Error())
	case errors.Is(err, common.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusUnauthorized, common.ErrInvalidToken.Error())
	case errors.Is(err, common.ErrorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	case errors.Is(err, common.ErrorValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return echo.NewHTTPError(http.StatusConflict, "user already exists")
	case errors.Is(err, common.ErrorUpstream):
		return echo.NewHTTPError(http.StatusBadGateway, "error fetching external users")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
