package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/studyhive/studyhive-backend/internal/handler"
	"github.com/studyhive/studyhive-backend/internal/middleware"
	"github.com/studyhive/studyhive-backend/pkg/jwt"
)

// SetupAuth configures authentication routes
func SetupAuth(router *gin.Engine, h *handler.AuthHandler, jwtManager *jwt.Manager) {
	authGroup := router.Group("/api/v1/auth")
	authGroup.POST("/signup", h.Signup)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/refresh", h.Refresh)
	authGroup.GET("/me", middleware.JWTAuth(jwtManager), h.Me)
	authGroup.DELETE("/me", middleware.JWTAuth(jwtManager), h.DeleteAccount)
}

// Setup configures friend, chat and message routes
func Setup(router *gin.Engine, friends *handler.FriendHandler, chats *handler.ChatHandler,
	jwtManager *jwt.Manager, redisClient *redis.Client, sendPerMinute int) {
	api := router.Group("/api/v1")
	auth := middleware.JWTAuth(jwtManager)

	// Friends
	friendGroup := api.Group("/friends", auth)
	friendGroup.GET("", friends.List)
	friendGroup.DELETE("/:userId", friends.Unfriend)
	friendGroup.GET("/requests", friends.ListRequests)
	friendGroup.POST("/requests", friends.SendRequest)
	friendGroup.POST("/requests/:id/accept", friends.Accept)
	friendGroup.POST("/requests/:id/decline", friends.Decline)
	friendGroup.DELETE("/requests/:id", friends.Cancel)

	// Chats
	chatGroup := api.Group("/chats", auth)
	chatGroup.GET("", chats.List)
	chatGroup.POST("/direct", chats.CreateDirect)
	chatGroup.POST("/group", chats.CreateGroup)
	chatGroup.GET("/:id", chats.Get)
	chatGroup.PUT("/:id", chats.Rename)
	chatGroup.POST("/:id/members", chats.AddMember)
	chatGroup.POST("/:id/leave", chats.Leave)
	chatGroup.PUT("/:id/mute", chats.Mute)
	chatGroup.GET("/:id/unread", chats.UnreadCount)

	// Messages: sends get a tighter per-user limit on top of the
	// global IP limiter
	chatGroup.GET("/:id/messages", chats.GetMessages)
	chatGroup.POST("/:id/messages", middleware.RateLimitPerUser(redisClient, sendPerMinute), chats.SendMessage)
	chatGroup.PUT("/:id/messages/:messageId", chats.EditMessage)
	chatGroup.DELETE("/:id/messages/:messageId", chats.DeleteMessage)
}

// SetupRealtime configures the WebSocket endpoint
func SetupRealtime(router *gin.Engine, h *handler.WSHandler) {
	router.GET("/ws", h.Connect)
}
