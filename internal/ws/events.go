package ws

import (
	"encoding/json"
	"errors"
)

// Client-to-server event names
const (
	EventChatJoin       = "chat:join"
	EventChatLeave      = "chat:leave"
	EventChatTyping     = "chat:typing"
	EventChatStopTyping = "chat:stop_typing"
)

// Server-to-client event names
const (
	EventChatMessage    = "chat:message"
	EventChatSystem     = "chat:system"
	EventFriendRequest  = "friend:request"
	EventFriendAccepted = "friend:accepted"
	EventError          = "error"
)

// Event is the wire envelope for server-to-client pushes
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// inboundEvent is the wire envelope for client-to-server events.
// Payloads are untyped on the wire and parsed into tagged structs
// before dispatch; malformed payloads are rejected.
type inboundEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ChatRoomPayload identifies the chat room an inbound event targets
type ChatRoomPayload struct {
	ChatID string `json:"chat_id"`
}

// TypingPayload is broadcast to other room members on (stop_)typing
type TypingPayload struct {
	ChatID string `json:"chat_id"`
	UserID string `json:"user_id"`
}

var errMalformedPayload = errors.New("malformed event payload")

func parseChatRoomPayload(raw json.RawMessage) (*ChatRoomPayload, error) {
	var p ChatRoomPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errMalformedPayload
	}
	if p.ChatID == "" {
		return nil, errMalformedPayload
	}
	return &p, nil
}

// UserRoom returns the personal notification room for a user
func UserRoom(userID string) string {
	return "user:" + userID
}

// ChatRoom returns the fan-out room for a chat
func ChatRoom(chatID string) string {
	return "chat:" + chatID
}
