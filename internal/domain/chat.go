package domain

import "time"

// Chat types
const (
	ChatDirect = "direct"
	ChatGroup  = "group"
)

// Membership roles
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Chat is a direct or group conversation. Direct chats carry a canonical
// PairKey ("smaller:larger" user ids) with a unique index so at most one
// direct chat exists per unordered pair. The last-message columns are a
// denormalized snapshot for list views; the message log is authoritative.
type Chat struct {
	ID        string  `gorm:"column:id;primaryKey;size:36" json:"id"`
	Type      string  `gorm:"column:type;size:16;not null;index" json:"type"`
	Name      string  `gorm:"column:name;size:128" json:"name,omitempty"`
	CreatorID string  `gorm:"column:creator_id;size:36;not null" json:"creator_id"`
	PairKey   *string `gorm:"column:pair_key;size:80;uniqueIndex" json:"-"`

	LastMessageAt       *time.Time `gorm:"column:last_message_at" json:"last_message_at,omitempty"`
	LastMessageContent  string     `gorm:"column:last_message_content;size:100" json:"-"`
	LastMessageSenderID string     `gorm:"column:last_message_sender_id;size:36" json:"-"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Chat) TableName() string {
	return "chats"
}

// ChatMembership joins a user to a chat. Unique per (chat, user).
// last_read_at / last_read_message_id form the unread-count cursor.
type ChatMembership struct {
	ID                string     `gorm:"column:id;primaryKey;size:36" json:"-"`
	ChatID            string     `gorm:"column:chat_id;size:36;not null;index:idx_chat_user,unique" json:"chat_id"`
	UserID            string     `gorm:"column:user_id;size:36;not null;index:idx_chat_user,unique" json:"user_id"`
	Role              string     `gorm:"column:role;size:16;default:member" json:"role"`
	LastReadAt        *time.Time `gorm:"column:last_read_at" json:"last_read_at,omitempty"`
	LastReadMessageID string     `gorm:"column:last_read_message_id;size:36" json:"last_read_message_id,omitempty"`
	IsMuted           bool       `gorm:"column:is_muted;default:false" json:"is_muted"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ChatMembership) TableName() string {
	return "chat_memberships"
}

// DirectPairKey builds the canonical unique key for a direct chat
func DirectPairKey(a, b string) string {
	x, y := CanonicalPair(a, b)
	return x + ":" + y
}

// CreateDirectChatRequest is the request body for opening a direct chat
type CreateDirectChatRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// CreateGroupChatRequest is the request body for creating a group chat
type CreateGroupChatRequest struct {
	Name      string   `json:"name" binding:"required,min=1,max=128"`
	MemberIDs []string `json:"member_ids"`
}

// AddMemberRequest is the request body for adding a group member
type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// RenameChatRequest is the request body for renaming a group chat
type RenameChatRequest struct {
	Name string `json:"name" binding:"required,min=1,max=128"`
}

// LastMessagePreview is the denormalized last-message snapshot
type LastMessagePreview struct {
	Content  string    `json:"content"`
	SenderID string    `json:"sender_id"`
	SentAt   time.Time `json:"sent_at"`
}

// ChatResponse represents a chat in API responses. Participants are
// derived from membership rows, not stored on the chat row.
type ChatResponse struct {
	ID            string              `json:"id"`
	Type          string              `json:"type"`
	Name          string              `json:"name,omitempty"`
	CreatorID     string              `json:"creator_id"`
	Participants  []string            `json:"participants"`
	LastMessageAt *time.Time          `json:"last_message_at,omitempty"`
	LastMessage   *LastMessagePreview `json:"last_message,omitempty"`
	UnreadCount   int64               `json:"unread_count"`
	CreatedAt     time.Time           `json:"created_at"`
}

// ToResponse converts Chat to ChatResponse with the derived participant list
func (ch *Chat) ToResponse(participants []string) *ChatResponse {
	resp := &ChatResponse{
		ID:            ch.ID,
		Type:          ch.Type,
		Name:          ch.Name,
		CreatorID:     ch.CreatorID,
		Participants:  participants,
		LastMessageAt: ch.LastMessageAt,
		CreatedAt:     ch.CreatedAt,
	}
	if ch.LastMessageAt != nil {
		resp.LastMessage = &LastMessagePreview{
			Content:  ch.LastMessageContent,
			SenderID: ch.LastMessageSenderID,
			SentAt:   *ch.LastMessageAt,
		}
	}
	return resp
}
