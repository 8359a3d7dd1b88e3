package service

import "github.com/studyhive/studyhive-backend/internal/ws"

// Broadcaster is the slice of the realtime hub the services need.
// Broadcasts are best-effort side effects of successful persistence;
// a disconnected socket is silently dropped, never retried.
type Broadcaster interface {
	BroadcastToChat(chatID string, event *ws.Event)
	BroadcastToUser(userID string, event *ws.Event)
	IsOnline(userID string) bool
}

// noopBroadcaster is used when the hub is not wired (tests, tools)
type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastToChat(string, *ws.Event) {}
func (noopBroadcaster) BroadcastToUser(string, *ws.Event) {}
func (noopBroadcaster) IsOnline(string) bool              { return false }

// NopBroadcaster returns a Broadcaster that does nothing
func NopBroadcaster() Broadcaster {
	return noopBroadcaster{}
}
