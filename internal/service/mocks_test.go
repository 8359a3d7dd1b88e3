package service

import (
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/studyhive/studyhive-backend/internal/domain"
	"github.com/studyhive/studyhive-backend/internal/ws"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *domain.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(id string) (*domain.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*domain.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(username string) (*domain.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ids []string) ([]*domain.User, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockFriendRepository is a mock implementation of FriendRepository
type MockFriendRepository struct {
	mock.Mock
}

func (m *MockFriendRepository) CreateRequest(req *domain.FriendRequest) error {
	args := m.Called(req)
	return args.Error(0)
}

func (m *MockFriendRepository) FindRequestByID(id string) (*domain.FriendRequest, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FriendRequest), args.Error(1)
}

func (m *MockFriendRepository) FindRequestByPair(fromUserID, toUserID string) (*domain.FriendRequest, error) {
	args := m.Called(fromUserID, toUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FriendRequest), args.Error(1)
}

func (m *MockFriendRepository) SaveRequest(req *domain.FriendRequest) error {
	args := m.Called(req)
	return args.Error(0)
}

func (m *MockFriendRepository) DeleteRequest(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockFriendRepository) ListIncoming(userID string) ([]*domain.FriendRequest, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FriendRequest), args.Error(1)
}

func (m *MockFriendRepository) ListOutgoing(userID string) ([]*domain.FriendRequest, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FriendRequest), args.Error(1)
}

func (m *MockFriendRepository) CreateFriendship(f *domain.Friendship) error {
	args := m.Called(f)
	return args.Error(0)
}

func (m *MockFriendRepository) FriendshipExists(userA, userB string) (bool, error) {
	args := m.Called(userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendRepository) DeleteFriendship(userA, userB string) error {
	args := m.Called(userA, userB)
	return args.Error(0)
}

func (m *MockFriendRepository) ListFriendIDs(userID string) ([]string, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockChatRepository is a mock implementation of ChatRepository
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Create(chat *domain.Chat) error {
	args := m.Called(chat)
	return args.Error(0)
}

func (m *MockChatRepository) FindByID(id string) (*domain.Chat, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *MockChatRepository) FindByPairKey(pairKey string) (*domain.Chat, error) {
	args := m.Called(pairKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *MockChatRepository) ListByUserID(userID string) ([]*domain.Chat, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Chat), args.Error(1)
}

func (m *MockChatRepository) Rename(id, name string) error {
	args := m.Called(id, name)
	return args.Error(0)
}

func (m *MockChatRepository) UpdateLastMessage(chatID, content, senderID string, sentAt time.Time) error {
	args := m.Called(chatID, content, senderID, sentAt)
	return args.Error(0)
}

// MockMembershipRepository is a mock implementation of MembershipRepository
type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) Upsert(membership *domain.ChatMembership) error {
	args := m.Called(membership)
	return args.Error(0)
}

func (m *MockMembershipRepository) Find(chatID, userID string) (*domain.ChatMembership, error) {
	args := m.Called(chatID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatMembership), args.Error(1)
}

func (m *MockMembershipRepository) Delete(chatID, userID string) error {
	args := m.Called(chatID, userID)
	return args.Error(0)
}

func (m *MockMembershipRepository) ListByChat(chatID string) ([]*domain.ChatMembership, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChatMembership), args.Error(1)
}

func (m *MockMembershipRepository) ListUserIDs(chatID string) ([]string, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockMembershipRepository) UpdateLastRead(chatID, userID, messageID string, readAt time.Time) error {
	args := m.Called(chatID, userID, messageID, readAt)
	return args.Error(0)
}

func (m *MockMembershipRepository) SetMuted(chatID, userID string, muted bool) error {
	args := m.Called(chatID, userID, muted)
	return args.Error(0)
}

// MockMessageRepository is a mock implementation of MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(msg *domain.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockMessageRepository) FindByID(id string) (*domain.Message, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) FindPage(chatID string, page domain.MessagePage) ([]*domain.Message, error) {
	args := m.Called(chatID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) Save(msg *domain.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockMessageRepository) CountUnread(chatID, userID string, after *time.Time) (int64, error) {
	args := m.Called(chatID, userID, after)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepository) AnonymizeSender(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

// recordingBroadcaster captures hub events emitted by services
type recordingBroadcaster struct {
	mu         sync.Mutex
	chatEvents map[string][]*ws.Event
	userEvents map[string][]*ws.Event
	online     map[string]bool
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{
		chatEvents: make(map[string][]*ws.Event),
		userEvents: make(map[string][]*ws.Event),
		online:     make(map[string]bool),
	}
}

func (b *recordingBroadcaster) BroadcastToChat(chatID string, event *ws.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chatEvents[chatID] = append(b.chatEvents[chatID], event)
}

func (b *recordingBroadcaster) BroadcastToUser(userID string, event *ws.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.userEvents[userID] = append(b.userEvents[userID], event)
}

func (b *recordingBroadcaster) IsOnline(userID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.online[userID]
}
