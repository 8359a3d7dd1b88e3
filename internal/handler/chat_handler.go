package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studyhive/studyhive-backend/internal/common"
	"github.com/studyhive/studyhive-backend/internal/domain"
	"github.com/studyhive/studyhive-backend/internal/middleware"
	"github.com/studyhive/studyhive-backend/internal/service"
)

// ChatHandler handles chat and message HTTP requests
type ChatHandler struct {
	chats    service.ChatService
	messages service.MessageService
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chats service.ChatService, messages service.MessageService) *ChatHandler {
	return &ChatHandler{chats: chats, messages: messages}
}

// CreateDirect handles POST /chats/direct
// @Summary Open (or return) the direct chat with another user
// @Tags chats
// @Security BearerAuth
// @Param request body domain.CreateDirectChatRequest true "other user"
// @Success 200 {object} common.APIResponse{data=domain.ChatResponse}
// @Router /chats/direct [post]
func (h *ChatHandler) CreateDirect(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req domain.CreateDirectChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.chats.CreateDirectChat(userID, req.UserID)
	if err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, result, nil)
}

// CreateGroup handles POST /chats/group
// @Summary Create a named group chat
// @Tags chats
// @Security BearerAuth
// @Param request body domain.CreateGroupChatRequest true "name and members"
// @Success 200 {object} common.APIResponse{data=domain.ChatResponse}
// @Router /chats/group [post]
func (h *ChatHandler) CreateGroup(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req domain.CreateGroupChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.chats.CreateGroupChat(userID, req.Name, req.MemberIDs)
	if err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, result, nil)
}

// List handles GET /chats
// @Summary List the caller's chats with unread counts
// @Tags chats
// @Security BearerAuth
// @Success 200 {object} common.APIResponse{data=[]domain.ChatResponse}
// @Router /chats [get]
func (h *ChatHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)

	result, err := h.chats.ListChats(userID)
	if err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, result, nil)
}

// Get handles GET /chats/:id
// @Summary Fetch one chat
// @Tags chats
// @Security BearerAuth
// @Router /chats/{id} [get]
func (h *ChatHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)

	result, err := h.chats.GetChat(userID, c.Param("id"))
	if err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, result, nil)
}

// Rename handles PUT /chats/:id
// @Summary Rename a group chat (owner/admin)
// @Tags chats
// @Security BearerAuth
// @Router /chats/{id} [put]
func (h *ChatHandler) Rename(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req domain.RenameChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.chats.Rename(userID, c.Param("id"), req.Name); err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"renamed": true}, nil)
}

// AddMember handles POST /chats/:id/members
// @Summary Add a friend to a group chat
// @Tags chats
// @Security BearerAuth
// @Router /chats/{id}/members [post]
func (h *ChatHandler) AddMember(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req domain.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.chats.AddMember(userID, c.Param("id"), req.UserID); err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"added": true}, nil)
}

// Leave handles POST /chats/:id/leave
// @Summary Leave a group chat
// @Tags chats
// @Security BearerAuth
// @Router /chats/{id}/leave [post]
func (h *ChatHandler) Leave(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.chats.Leave(userID, c.Param("id")); err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"left": true}, nil)
}

// Mute handles PUT /chats/:id/mute
// @Summary Mute or unmute a chat for the caller
// @Tags chats
// @Security BearerAuth
// @Router /chats/{id}/mute [put]
func (h *ChatHandler) Mute(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req struct {
		Muted bool `json:"muted"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.chats.SetMuted(userID, c.Param("id"), req.Muted); err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"muted": req.Muted}, nil)
}

// SendMessage handles POST /chats/:id/messages
// @Summary Send a message (persists, then broadcasts)
// @Tags messages
// @Security BearerAuth
// @Param request body domain.SendMessageRequest true "message content"
// @Success 200 {object} common.APIResponse{data=domain.MessageResponse}
// @Router /chats/{id}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.messages.Send(userID, c.Param("id"), req.Content)
	if err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, result, nil)
}

// GetMessages handles GET /chats/:id/messages?limit=&before=&after=
// Cursors are RFC3339Nano timestamps on created_at. Fetching a page
// advances the caller's read cursor to the page's last message.
// @Summary Page through a chat's messages, oldest first
// @Tags messages
// @Security BearerAuth
// @Success 200 {object} common.APIResponse{data=[]domain.MessageResponse}
// @Router /chats/{id}/messages [get]
func (h *ChatHandler) GetMessages(c *gin.Context) {
	userID := middleware.GetUserID(c)

	page := domain.MessagePage{}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		page.Limit = l
	}
	if v := c.Query("before"); v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid before cursor", err)
			return
		}
		page.Before = &t
	}
	if v := c.Query("after"); v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid after cursor", err)
			return
		}
		page.After = &t
	}

	result, err := h.messages.GetMessages(userID, c.Param("id"), page)
	if err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, result, &common.Meta{Limit: page.Limit})
}

// EditMessage handles PUT /chats/:id/messages/:messageId
// @Summary Edit own message
// @Tags messages
// @Security BearerAuth
// @Router /chats/{id}/messages/{messageId} [put]
func (h *ChatHandler) EditMessage(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req domain.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.messages.Edit(userID, c.Param("id"), c.Param("messageId"), req.Content)
	if err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, result, nil)
}

// DeleteMessage handles DELETE /chats/:id/messages/:messageId
// @Summary Soft-delete own message
// @Tags messages
// @Security BearerAuth
// @Router /chats/{id}/messages/{messageId} [delete]
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.messages.Delete(userID, c.Param("id"), c.Param("messageId")); err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"deleted": true}, nil)
}

// UnreadCount handles GET /chats/:id/unread
// @Summary Unread message count for the caller
// @Tags messages
// @Security BearerAuth
// @Router /chats/{id}/unread [get]
func (h *ChatHandler) UnreadCount(c *gin.Context) {
	userID := middleware.GetUserID(c)

	count, err := h.messages.UnreadCount(userID, c.Param("id"))
	if err != nil {
		common.ServiceError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"unread_count": count}, nil)
}
