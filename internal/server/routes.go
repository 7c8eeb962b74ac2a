package server

import "github.com/mateenikhtiyar/cim-backend/internal/principal"

func RegisterRoutes(srv *Server, h *Handler) {
	e := srv.Echo()

	authGroup := e.Group("/auth")

	authGroup.POST("/buyer/login", h.login(principal.RoleBuyer))
	authGroup.POST("/seller/login", h.login(principal.RoleSeller))
	authGroup.POST("/admin/login", h.login(principal.RoleAdmin))

	authGroup.POST("/buyer/google", h.googleLogin(principal.RoleBuyer))
	authGroup.POST("/seller/google", h.googleLogin(principal.RoleSeller))

	authGroup.POST("/forgot-password", h.forgotPassword)
	authGroup.POST("/buyer/forgot-password", h.forgotPasswordForRole(principal.RoleBuyer))
	authGroup.POST("/seller/forgot-password", h.forgotPasswordForRole(principal.RoleSeller))
	authGroup.POST("/reset-password", h.resetPassword)

	authGroup.GET("/verify-email", h.verifyEmail)
	authGroup.POST("/resend-verification", h.resendVerification)
}
