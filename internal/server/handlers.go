package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mateenikhtiyar/cim-backend/internal/auth"
	"github.com/mateenikhtiyar/cim-backend/internal/logging"
	"github.com/mateenikhtiyar/cim-backend/internal/principal"
)

type Handler struct {
	auth   *auth.Service
	logger *logging.Service
}

func NewHandler(authService *auth.Service, logger *logging.Service) *Handler {
	return &Handler{auth: authService, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleLoginRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Picture  string `json:"picture"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (h *Handler) login(role principal.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req loginRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}

		result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password, role)
		if err != nil {
			return translateError(err)
		}
		return c.JSON(http.StatusOK, result)
	}
}

func (h *Handler) googleLogin(role principal.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req googleLoginRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		if req.Email == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "email is required")
		}

		profile := auth.GoogleProfile{Email: req.Email, FullName: req.FullName, Picture: req.Picture}
		result, err := h.auth.LoginWithGoogle(c.Request().Context(), profile, role)
		if err != nil {
			return translateError(err)
		}
		return c.JSON(http.StatusOK, result)
	}
}

func (h *Handler) forgotPassword(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.auth.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return translateError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "reset email sent"})
}

func (h *Handler) forgotPasswordForRole(role principal.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req emailRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}

		if err := h.auth.RequestPasswordResetForRole(c.Request().Context(), req.Email, role); err != nil {
			return translateError(err)
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "reset email sent"})
	}
}

func (h *Handler) resetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Token == "" || req.NewPassword == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token and new_password are required")
	}

	if err := h.auth.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return translateError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "password updated"})
}

func (h *Handler) verifyEmail(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}

	result, err := h.auth.ConsumeVerification(c.Request().Context(), token)
	if err != nil {
		return translateError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) resendVerification(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.auth.ResendVerification(c.Request().Context(), req.Email); err != nil {
		return translateError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "verification email sent"})
}
