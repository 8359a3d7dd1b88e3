package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyhive/studyhive-backend/internal/common"
	"github.com/studyhive/studyhive-backend/internal/domain"
	"github.com/studyhive/studyhive-backend/internal/middleware"
	"github.com/studyhive/studyhive-backend/internal/service"
)

// FriendHandler handles friendship HTTP requests
type FriendHandler struct {
	service service.FriendService
}

// NewFriendHandler creates a new FriendHandler
func NewFriendHandler(service service.FriendService) *FriendHandler {
	return &FriendHandler{service: service}
}

// SendRequest handles POST /friends/requests
// @Summary Send a friend request
// @Tags friends
// @Security BearerAuth
// @Param request body domain.CreateFriendRequestBody true "target user"
// @Success 200 {object} common.APIResponse{data=domain.FriendRequestResponse}
// @Router /friends/requests [post]
func (h *FriendHandler) SendRequest(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req domain.CreateFriendRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.service.SendRequest(userID, req.ToUserID)
	if err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, result, nil)
}

// Accept handles POST /friends/requests/:id/accept
// @Summary Accept a friend request
// @Tags friends
// @Security BearerAuth
// @Router /friends/requests/{id}/accept [post]
func (h *FriendHandler) Accept(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.service.AcceptRequest(userID, c.Param("id")); err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"accepted": true}, nil)
}

// Decline handles POST /friends/requests/:id/decline
// @Summary Decline a friend request
// @Tags friends
// @Security BearerAuth
// @Router /friends/requests/{id}/decline [post]
func (h *FriendHandler) Decline(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.service.DeclineRequest(userID, c.Param("id")); err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"declined": true}, nil)
}

// Cancel handles DELETE /friends/requests/:id
// @Summary Withdraw an outgoing friend request
// @Tags friends
// @Security BearerAuth
// @Router /friends/requests/{id} [delete]
func (h *FriendHandler) Cancel(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.service.CancelRequest(userID, c.Param("id")); err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"cancelled": true}, nil)
}

// List handles GET /friends
// @Summary List friends with presence flags
// @Tags friends
// @Security BearerAuth
// @Success 200 {object} common.APIResponse{data=[]domain.UserResponse}
// @Router /friends [get]
func (h *FriendHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)

	result, err := h.service.ListFriends(userID)
	if err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, result, nil)
}

// ListRequests handles GET /friends/requests?direction=incoming|outgoing
// @Summary List pending friend requests
// @Tags friends
// @Security BearerAuth
// @Router /friends/requests [get]
func (h *FriendHandler) ListRequests(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var (
		result []*domain.FriendRequestResponse
		err    error
	)
	if c.DefaultQuery("direction", "incoming") == "outgoing" {
		result, err = h.service.ListOutgoing(userID)
	} else {
		result, err = h.service.ListIncoming(userID)
	}
	if err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, result, nil)
}

// Unfriend handles DELETE /friends/:userId
// @Summary Remove a friend
// @Tags friends
// @Security BearerAuth
// @Router /friends/{userId} [delete]
func (h *FriendHandler) Unfriend(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.service.Unfriend(userID, c.Param("userId")); err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"removed": true}, nil)
}
