package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mateenikhtiyar/cim-backend/internal/auth"
	"github.com/mateenikhtiyar/cim-backend/internal/principal"
	"github.com/mateenikhtiyar/cim-backend/internal/session"
)

// translateError maps identity-core sentinels onto HTTP statuses. Internal
// causes that were deliberately collapsed stay collapsed here.
func translateError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrEmailNotVerified):
		return echo.NewHTTPError(http.StatusUnauthorized, "email not verified")
	case errors.Is(err, auth.ErrAccountNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "account not found")
	case errors.Is(err, auth.ErrResetTokenInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid or expired token")
	case errors.Is(err, auth.ErrAlreadyVerified):
		return echo.NewHTTPError(http.StatusBadRequest, "email is already verified")
	case errors.Is(err, session.ErrMissingSubject):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid account")
	case errors.Is(err, principal.ErrUnsupportedRole):
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported role")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
