package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyhive/studyhive-backend/internal/common"
	"github.com/studyhive/studyhive-backend/internal/domain"
	"github.com/studyhive/studyhive-backend/internal/middleware"
	"github.com/studyhive/studyhive-backend/internal/service"
)

// AuthHandler handles account and token HTTP requests
type AuthHandler struct {
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Signup handles POST /auth/signup
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body domain.SignupRequest true "signup payload"
// @Success 200 {object} common.APIResponse{data=domain.TokenResponse}
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req domain.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.service.Signup(&req)
	if err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, result, nil)
}

// Login handles POST /auth/login
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "credentials"
// @Success 200 {object} common.APIResponse{data=domain.TokenResponse}
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.service.Login(&req)
	if err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, result, nil)
}

// Refresh handles POST /auth/refresh
// @Summary Exchange a refresh token for a new pair
// @Tags auth
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req domain.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.service.Refresh(req.RefreshToken)
	if err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, result, nil)
}

// Me handles GET /auth/me
// @Summary Current user profile
// @Tags auth
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	result, err := h.service.Me(userID)
	if err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, result, nil)
}

// DeleteAccount handles DELETE /auth/me
// @Summary Delete the current account
// @Tags auth
// @Security BearerAuth
// @Router /auth/me [delete]
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	if err := h.service.DeleteAccount(userID); err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"deleted": true}, nil)
}
