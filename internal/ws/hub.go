package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/studyhive/studyhive-backend/pkg/logger"
)

const redisPubSubChannel = "chat:events"

var errNotMember = errors.New("not a chat member")

// MembershipChecker verifies chat membership at room-join time.
// The hub's own room state is ephemeral and never authoritative;
// persisted reads and writes are authorized in the service layer.
type MembershipChecker interface {
	IsMember(chatID, userID string) (bool, error)
}

// MembershipCheckerFunc adapts a function to the MembershipChecker
// interface
type MembershipCheckerFunc func(chatID, userID string) (bool, error)

func (f MembershipCheckerFunc) IsMember(chatID, userID string) (bool, error) {
	return f(chatID, userID)
}

// Hub is the session registry and fan-out relay. It is an injectable
// object with explicit lifecycle (Run at server start, Stop on
// shutdown), not a module-level singleton, so tests can fake it.
type Hub struct {
	// Registered clients grouped by user ID
	clients map[string]map[*Client]bool

	// Room name -> members. Rooms are "user:<id>" and "chat:<id>".
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *roomEvent

	mu          sync.RWMutex
	checker     MembershipChecker
	redisClient *redis.Client
	instanceID  string
	ctx         context.Context
	cancel      context.CancelFunc
}

type roomEvent struct {
	Room   string
	Event  *Event
	Except *Client
}

// NewHub creates a new Hub. redisClient may be nil for single-instance
// deployments and tests.
func NewHub(redisClient *redis.Client, checker MembershipChecker) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[string]map[*Client]bool),
		rooms:       make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *roomEvent, 256),
		checker:     checker,
		redisClient: redisClient,
		instanceID:  uuid.New().String(),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	if h.redisClient != nil {
		go h.subscribeRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case ev := <-h.broadcast:
			h.deliver(ev)

		case <-h.ctx.Done():
			return
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	// Every authenticated connection sits in its personal room
	h.joinRoomLocked(client, UserRoom(client.userID))
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.userID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}

	for room := range client.rooms {
		h.leaveRoomLocked(client, room)
	}
	close(client.send)
}

func (h *Hub) joinRoomLocked(client *Client, room string) {
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
	client.rooms[room] = true
}

func (h *Hub) leaveRoomLocked(client *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(client.rooms, room)
}

// JoinChat places a connection into a chat room after verifying
// membership. Ephemeral room state is rebuilt on reconnect.
func (h *Hub) JoinChat(client *Client, chatID string) error {
	if h.checker != nil {
		ok, err := h.checker.IsMember(chatID, client.userID)
		if err != nil {
			return err
		}
		if !ok {
			return errNotMember
		}
	}

	h.mu.Lock()
	h.joinRoomLocked(client, ChatRoom(chatID))
	h.mu.Unlock()
	return nil
}

// LeaveChat removes a connection from a chat room
func (h *Hub) LeaveChat(client *Client, chatID string) {
	h.mu.Lock()
	h.leaveRoomLocked(client, ChatRoom(chatID))
	h.mu.Unlock()
}

// deliver fans an event out to every connection in a room. Slow
// clients with a full send buffer are dropped; live events are
// disposable and carry no delivery guarantee.
func (h *Hub) deliver(ev *roomEvent) {
	data, err := json.Marshal(ev.Event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[ev.Room] {
		if client == ev.Except {
			continue
		}
		select {
		case client.send <- data:
		default:
			// best-effort: drop for this connection
		}
	}
}

// BroadcastToChat sends an event to every connected member of a chat.
// Called only as a side effect of successful persistence (REST send),
// never as an independent client-initiated action.
func (h *Hub) BroadcastToChat(chatID string, event *Event) {
	h.publish(&roomEvent{Room: ChatRoom(chatID), Event: event})
}

// BroadcastToUser sends an event to all of a user's connections
func (h *Hub) BroadcastToUser(userID string, event *Event) {
	h.publish(&roomEvent{Room: UserRoom(userID), Event: event})
}

// relayEphemeral broadcasts to a room excluding the sender, local
// connections only. Typing signals are not mirrored across instances
// through Redis; they are disposable.
func (h *Hub) relayEphemeral(room string, event *Event, except *Client) {
	select {
	case h.broadcast <- &roomEvent{Room: room, Event: event, Except: except}:
	default:
	}
}

func (h *Hub) publish(ev *roomEvent) {
	select {
	case h.broadcast <- ev:
	default:
	}

	if h.redisClient != nil {
		msg := &redisEnvelope{Origin: h.instanceID, Room: ev.Room, Event: ev.Event}
		data, err := json.Marshal(msg)
		if err == nil {
			h.redisClient.Publish(h.ctx, redisPubSubChannel, data) //nolint:errcheck
		}
	}
}

type redisEnvelope struct {
	Origin string `json:"origin"`
	Room   string `json:"room"`
	Event  *Event `json:"event"`
}

// subscribeRedis listens for events published by other instances
func (h *Hub) subscribeRedis() {
	pubsub := h.redisClient.Subscribe(h.ctx, redisPubSubChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env redisEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			if env.Origin == h.instanceID {
				// Already delivered locally
				continue
			}
			h.broadcast <- &roomEvent{Room: env.Room, Event: env.Event}
		case <-h.ctx.Done():
			return
		}
	}
}

// IsOnline reports whether a user has at least one live connection
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// handleInbound dispatches a parsed client event
func (h *Hub) handleInbound(client *Client, ev *inboundEvent) {
	switch ev.Type {
	case EventChatJoin:
		p, err := parseChatRoomPayload(ev.Payload)
		if err != nil {
			client.sendError("malformed chat:join payload")
			return
		}
		if err := h.JoinChat(client, p.ChatID); err != nil {
			client.sendError("cannot join chat " + p.ChatID)
			return
		}

	case EventChatLeave:
		p, err := parseChatRoomPayload(ev.Payload)
		if err != nil {
			client.sendError("malformed chat:leave payload")
			return
		}
		h.LeaveChat(client, p.ChatID)

	case EventChatTyping, EventChatStopTyping:
		p, err := parseChatRoomPayload(ev.Payload)
		if err != nil {
			client.sendError("malformed typing payload")
			return
		}
		room := ChatRoom(p.ChatID)
		if !client.inRoom(room) {
			return
		}
		h.relayEphemeral(room, &Event{
			Type:    ev.Type,
			Payload: &TypingPayload{ChatID: p.ChatID, UserID: client.userID},
		}, client)

	default:
		logger.Get().Debug().
			Str("event", ev.Type).
			Str("user_id", client.userID).
			Msg("ignoring unknown ws event")
	}
}

// Stop gracefully shuts down the hub
func (h *Hub) Stop() {
	h.cancel()
}
