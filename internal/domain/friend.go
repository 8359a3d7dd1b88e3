package domain

import "time"

// Friend request status values
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestDeclined = "declined"
)

// FriendRequest is a directed request from one user to another.
// Unique per ordered (from, to) pair; re-requesting after a decline
// flips the existing row back to pending.
type FriendRequest struct {
	ID         string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	FromUserID string    `gorm:"column:from_user_id;size:36;not null;index:idx_request_pair,unique" json:"from_user_id"`
	ToUserID   string    `gorm:"column:to_user_id;size:36;not null;index:idx_request_pair,unique" json:"to_user_id"`
	Status     string    `gorm:"column:status;size:16;default:pending" json:"status"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (FriendRequest) TableName() string {
	return "friend_requests"
}

// Friendship is an undirected edge stored with canonical ordering:
// UserA < UserB (string comparison). The unique index on the pair is
// the backstop against concurrent mutual accepts.
type Friendship struct {
	ID        string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	UserA     string    `gorm:"column:user_a;size:36;not null;index:idx_friend_pair,unique" json:"user_a"`
	UserB     string    `gorm:"column:user_b;size:36;not null;index:idx_friend_pair,unique" json:"user_b"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Friendship) TableName() string {
	return "friendships"
}

// CanonicalPair orders two user ids so that the smaller comes first
func CanonicalPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// CreateFriendRequestBody is the request body for sending a friend request
type CreateFriendRequestBody struct {
	ToUserID string `json:"to_user_id" binding:"required"`
}

// FriendRequestResponse represents a friend request in API responses
type FriendRequestResponse struct {
	ID        string        `json:"id"`
	From      *UserResponse `json:"from,omitempty"`
	To        *UserResponse `json:"to,omitempty"`
	Status    string        `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}
