package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	members map[string]bool // "chatID/userID"
}

func (f *fakeChecker) IsMember(chatID, userID string) (bool, error) {
	return f.members[chatID+"/"+userID], nil
}

func startHub(t *testing.T, checker MembershipChecker) *Hub {
	t.Helper()
	hub := NewHub(nil, checker)
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func connect(t *testing.T, hub *Hub, userID string) *Client {
	t.Helper()
	client := NewClient(hub, nil, userID)
	hub.Register(client)
	require.Eventually(t, func() bool {
		return hub.IsOnline(userID)
	}, time.Second, 5*time.Millisecond)
	return client
}

func receive(t *testing.T, client *Client) *Event {
	t.Helper()
	select {
	case data := <-client.send:
		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		return &ev
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
		return nil
	}
}

func assertSilent(t *testing.T, client *Client) {
	t.Helper()
	select {
	case data := <-client.send:
		t.Fatalf("unexpected event: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRegister_JoinsPersonalRoom(t *testing.T) {
	hub := startHub(t, nil)
	client := connect(t, hub, "user-1")

	hub.BroadcastToUser("user-1", &Event{Type: EventFriendRequest, Payload: map[string]string{"user_id": "user-2"}})

	ev := receive(t, client)
	assert.Equal(t, EventFriendRequest, ev.Type)
}

func TestJoinChat_MembershipChecked(t *testing.T) {
	checker := &fakeChecker{members: map[string]bool{"chat-1/user-1": true}}
	hub := startHub(t, checker)

	member := connect(t, hub, "user-1")
	outsider := connect(t, hub, "user-2")

	require.NoError(t, hub.JoinChat(member, "chat-1"))
	assert.ErrorIs(t, hub.JoinChat(outsider, "chat-1"), errNotMember)

	hub.BroadcastToChat("chat-1", &Event{Type: EventChatMessage, Payload: "hi"})

	ev := receive(t, member)
	assert.Equal(t, EventChatMessage, ev.Type)
	assertSilent(t, outsider)
}

func TestBroadcastToChat_ReachesAllJoinedConnections(t *testing.T) {
	checker := &fakeChecker{members: map[string]bool{
		"chat-1/user-1": true,
		"chat-1/user-2": true,
	}}
	hub := startHub(t, checker)

	c1 := connect(t, hub, "user-1")
	c2 := connect(t, hub, "user-2")
	require.NoError(t, hub.JoinChat(c1, "chat-1"))
	require.NoError(t, hub.JoinChat(c2, "chat-1"))

	hub.BroadcastToChat("chat-1", &Event{Type: EventChatMessage, Payload: "hello"})

	assert.Equal(t, EventChatMessage, receive(t, c1).Type)
	assert.Equal(t, EventChatMessage, receive(t, c2).Type)
}

func TestLeaveChat_StopsDelivery(t *testing.T) {
	checker := &fakeChecker{members: map[string]bool{"chat-1/user-1": true}}
	hub := startHub(t, checker)

	client := connect(t, hub, "user-1")
	require.NoError(t, hub.JoinChat(client, "chat-1"))
	hub.LeaveChat(client, "chat-1")

	hub.BroadcastToChat("chat-1", &Event{Type: EventChatMessage, Payload: "hi"})

	assertSilent(t, client)
}

func TestTypingRelay_ExcludesSenderAndRequiresRoom(t *testing.T) {
	checker := &fakeChecker{members: map[string]bool{
		"chat-1/user-1": true,
		"chat-1/user-2": true,
	}}
	hub := startHub(t, checker)

	typist := connect(t, hub, "user-1")
	reader := connect(t, hub, "user-2")
	require.NoError(t, hub.JoinChat(typist, "chat-1"))
	require.NoError(t, hub.JoinChat(reader, "chat-1"))

	payload, _ := json.Marshal(&ChatRoomPayload{ChatID: "chat-1"})
	hub.handleInbound(typist, &inboundEvent{Type: EventChatTyping, Payload: payload})

	ev := receive(t, reader)
	assert.Equal(t, EventChatTyping, ev.Type)
	assertSilent(t, typist)
}

func TestTypingRelay_IgnoredOutsideRoom(t *testing.T) {
	checker := &fakeChecker{members: map[string]bool{"chat-1/user-2": true}}
	hub := startHub(t, checker)

	lurker := connect(t, hub, "user-1")
	reader := connect(t, hub, "user-2")
	require.NoError(t, hub.JoinChat(reader, "chat-1"))

	// user-1 never joined the room; the signal is dropped
	payload, _ := json.Marshal(&ChatRoomPayload{ChatID: "chat-1"})
	hub.handleInbound(lurker, &inboundEvent{Type: EventChatTyping, Payload: payload})

	assertSilent(t, reader)
}

func TestHandleInbound_MalformedPayload(t *testing.T) {
	hub := startHub(t, &fakeChecker{})
	client := connect(t, hub, "user-1")

	hub.handleInbound(client, &inboundEvent{Type: EventChatJoin, Payload: json.RawMessage(`{"chat_id":""}`)})

	ev := receive(t, client)
	assert.Equal(t, EventError, ev.Type)
}

func TestUnregister_ClearsPresenceAndRooms(t *testing.T) {
	checker := &fakeChecker{members: map[string]bool{"chat-1/user-1": true}}
	hub := startHub(t, checker)

	client := connect(t, hub, "user-1")
	require.NoError(t, hub.JoinChat(client, "chat-1"))

	hub.unregister <- client

	require.Eventually(t, func() bool {
		return !hub.IsOnline("user-1")
	}, time.Second, 5*time.Millisecond)

	hub.mu.RLock()
	_, roomExists := hub.rooms[ChatRoom("chat-1")]
	hub.mu.RUnlock()
	assert.False(t, roomExists)
}

func TestIsOnline_PerUserMultiConnection(t *testing.T) {
	hub := startHub(t, nil)

	c1 := connect(t, hub, "user-1")
	c2 := NewClient(hub, nil, "user-1")
	hub.Register(c2)

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients["user-1"]) == 2
	}, time.Second, 5*time.Millisecond)

	hub.unregister <- c1
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients["user-1"]) == 1
	}, time.Second, 5*time.Millisecond)

	assert.True(t, hub.IsOnline("user-1"))
}
