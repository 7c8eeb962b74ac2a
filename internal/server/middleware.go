package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mateenikhtiyar/cim-backend/internal/session"
)

const (
	userIDKey = "_session_user_id"
	claimsKey = "_session_claims"
)

// RequireSession authenticates requests with a bearer session token.
func RequireSession(sessions *session.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header required")
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "session token required")
			}

			claims, err := sessions.Verify(tokenString)
			if err != nil {
				switch err {
				case session.ErrExpiredToken:
					return echo.NewHTTPError(http.StatusUnauthorized, "session token has expired")
				case session.ErrMalformedToken:
					return echo.NewHTTPError(http.StatusUnauthorized, "malformed session token")
				case session.ErrInvalidSignature:
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid session token signature")
				default:
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid session token")
				}
			}

			c.Set(userIDKey, claims.UserID())
			c.Set(claimsKey, claims)

			return next(c)
		}
	}
}

func GetUserID(c echo.Context) string {
	if userID, ok := c.Get(userIDKey).(string); ok {
		return userID
	}
	return ""
}

func GetClaims(c echo.Context) *session.Claims {
	if claims, ok := c.Get(claimsKey).(*session.Claims); ok {
		return claims
	}
	return nil
}
