package service

import (
	"github.com/studyhive/studyhive-backend/internal/domain"
	"github.com/studyhive/studyhive-backend/internal/ws"
)

// FriendEventPayload notifies a user about friend-graph changes
type FriendEventPayload struct {
	UserID string `json:"user_id"`
}

func friendRequestEvent(fromUserID string) *ws.Event {
	return &ws.Event{
		Type:    ws.EventFriendRequest,
		Payload: &FriendEventPayload{UserID: fromUserID},
	}
}

func friendAcceptedEvent(byUserID string) *ws.Event {
	return &ws.Event{
		Type:    ws.EventFriendAccepted,
		Payload: &FriendEventPayload{UserID: byUserID},
	}
}

func chatMessageEvent(msg *domain.MessageResponse) *ws.Event {
	return &ws.Event{
		Type:    ws.EventChatMessage,
		Payload: msg,
	}
}

// ChatSystemPayload notifies connected users about chat lifecycle events
type ChatSystemPayload struct {
	ChatID  string                  `json:"chat_id"`
	Action  string                  `json:"action"`
	ActorID string                  `json:"actor_id"`
	Message *domain.MessageResponse `json:"message,omitempty"`
}

func chatSystemEvent(chatID, action, actorID string, msg *domain.MessageResponse) *ws.Event {
	return &ws.Event{
		Type:    ws.EventChatSystem,
		Payload: &ChatSystemPayload{ChatID: chatID, Action: action, ActorID: actorID, Message: msg},
	}
}
