package domain

import "time"

// Message types
const (
	MessageText   = "text"
	MessageSystem = "system"
)

// System message actions
const (
	SystemCreated = "created"
	SystemJoined  = "joined"
	SystemLeft    = "left"
	SystemRenamed = "renamed"
)

// MaxContentLength bounds human message content (after trimming)
const MaxContentLength = 5000

// Message belongs to exactly one chat and is ordered by created_at.
// Rows are immutable except for the edit/soft-delete flags and the
// sender_deleted anonymization marker.
type Message struct {
	ID            string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	ChatID        string    `gorm:"column:chat_id;size:36;not null;index:idx_chat_created" json:"chat_id"`
	SenderID      string    `gorm:"column:sender_id;size:36;not null" json:"sender_id"`
	SenderDeleted bool      `gorm:"column:sender_deleted;default:false" json:"sender_deleted"`
	Content       string    `gorm:"column:content;type:text" json:"content"`
	Type          string    `gorm:"column:type;size:16;default:text" json:"type"`
	SystemAction  string    `gorm:"column:system_action;size:16" json:"system_action,omitempty"`
	IsEdited      bool      `gorm:"column:is_edited;default:false" json:"is_edited"`
	IsDeleted     bool      `gorm:"column:is_deleted;default:false" json:"is_deleted"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime;index:idx_chat_created" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

// SendMessageRequest is the request body for sending a message
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// EditMessageRequest is the request body for editing a message
type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// MessagePage is the query shape for a message page
type MessagePage struct {
	Limit  int
	Before *time.Time
	After  *time.Time
}

// MessageResponse represents a message in API responses
type MessageResponse struct {
	ID            string    `json:"id"`
	ChatID        string    `json:"chat_id"`
	SenderID      string    `json:"sender_id"`
	SenderDeleted bool      `json:"sender_deleted"`
	Content       string    `json:"content"`
	Type          string    `json:"type"`
	SystemAction  string    `json:"system_action,omitempty"`
	IsEdited      bool      `json:"is_edited"`
	IsDeleted     bool      `json:"is_deleted"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToResponse converts Message to MessageResponse
func (m *Message) ToResponse() *MessageResponse {
	return &MessageResponse{
		ID:            m.ID,
		ChatID:        m.ChatID,
		SenderID:      m.SenderID,
		SenderDeleted: m.SenderDeleted,
		Content:       m.Content,
		Type:          m.Type,
		SystemAction:  m.SystemAction,
		IsEdited:      m.IsEdited,
		IsDeleted:     m.IsDeleted,
		CreatedAt:     m.CreatedAt,
	}
}
