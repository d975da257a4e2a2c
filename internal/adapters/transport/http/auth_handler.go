package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kilnworks/brickline/internal/adapters/transport/http/middleware"
	"github.com/kilnworks/brickline/internal/app/dto"
	authService "github.com/kilnworks/brickline/internal/app/auth/service"
	"github.com/kilnworks/brickline/internal/domain/auth/model"
)

type AuthHandler struct {
	svc authService.AuthService
	log *zap.Logger
}

func NewAuthHandler(svc authService.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var body dto.RegisterDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	pair, err := h.svc.Register(c.Request.Context(), body)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, tokenEnvelope("User registered successfully", pair))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	pair, err := h.svc.Login(c.Request.Context(), body)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, tokenEnvelope("Login successful", pair))
}

// Logout is best-effort from the server's point of view: there is no token
// state to destroy here. The client clears its own storage.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context()); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: "Logout successful",
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var body dto.RefreshDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Refresh token is required")
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), body)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, tokenEnvelope("Token refreshed successfully", pair))
}

func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	uid, err := claims.UserID()
	if err != nil {
		fail(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	user, err := h.svc.CurrentUser(c.Request.Context(), uid)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: "Current user retrieved successfully",
		Data:    user.Public(),
	})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var body dto.ForgotPasswordDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.svc.ForgotPassword(c.Request.Context(), body); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: "If the email exists, a password reset link has been sent",
	})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var body dto.ResetPasswordDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Token and new password are required")
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), body); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: "Password reset successfully",
	})
}

func tokenEnvelope(message string, pair model.TokenPair) Envelope {
	return Envelope{
		Success:      true,
		Message:      message,
		User:         pair.User.Public(),
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
}
