package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/studyhive/studyhive-backend/internal/common"
	"github.com/studyhive/studyhive-backend/internal/domain"
	"github.com/studyhive/studyhive-backend/internal/repository"
	"gorm.io/gorm"
)

// ChatService chat lifecycle and membership business logic
type ChatService interface {
	CreateDirectChat(actorID, otherUserID string) (*domain.ChatResponse, error)
	CreateGroupChat(actorID, name string, memberIDs []string) (*domain.ChatResponse, error)
	GetChat(actorID, chatID string) (*domain.ChatResponse, error)
	ListChats(actorID string) ([]*domain.ChatResponse, error)
	AddMember(actorID, chatID, userID string) error
	Leave(actorID, chatID string) error
	Rename(actorID, chatID, name string) error
	SetMuted(actorID, chatID string, muted bool) error
	IsMember(chatID, userID string) (bool, error)
}

type chatService struct {
	chatRepo       repository.ChatRepository
	membershipRepo repository.MembershipRepository
	messageRepo    repository.MessageRepository
	friendRepo     repository.FriendRepository
	unread         UnreadCounter
	hub            Broadcaster
}

// UnreadCounter is the slice of MessageService the chat list needs
type UnreadCounter interface {
	UnreadCountForMembership(m *domain.ChatMembership) (int64, error)
}

// NewChatService creates a new ChatService
func NewChatService(
	chatRepo repository.ChatRepository,
	membershipRepo repository.MembershipRepository,
	messageRepo repository.MessageRepository,
	friendRepo repository.FriendRepository,
	unread UnreadCounter,
	hub Broadcaster,
) ChatService {
	if hub == nil {
		hub = NopBroadcaster()
	}
	return &chatService{
		chatRepo:       chatRepo,
		membershipRepo: membershipRepo,
		messageRepo:    messageRepo,
		friendRepo:     friendRepo,
		unread:         unread,
		hub:            hub,
	}
}

// CreateDirectChat opens (or returns) the one direct chat for a user
// pair. Requires an existing friendship. The canonical pair key's
// unique index makes creation race-safe: the loser of a concurrent
// create re-reads and returns the winner's chat.
func (s *chatService) CreateDirectChat(actorID, otherUserID string) (*domain.ChatResponse, error) {
	if actorID == otherUserID {
		return nil, common.ErrInvalidInput
	}

	friends, err := s.friendRepo.FriendshipExists(actorID, otherUserID)
	if err != nil {
		return nil, err
	}
	if !friends {
		return nil, common.ErrNotFriends
	}

	pairKey := domain.DirectPairKey(actorID, otherUserID)
	if existing, err := s.chatRepo.FindByPairKey(pairKey); err == nil {
		return s.toResponse(existing, nil)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	chat := &domain.Chat{
		ID:        uuid.New().String(),
		Type:      domain.ChatDirect,
		CreatorID: actorID,
		PairKey:   &pairKey,
	}
	if err := s.chatRepo.Create(chat); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, ferr := s.chatRepo.FindByPairKey(pairKey)
			if ferr != nil {
				return nil, ferr
			}
			return s.toResponse(existing, nil)
		}
		return nil, err
	}

	for _, uid := range []string{actorID, otherUserID} {
		if err := s.addMembership(chat.ID, uid, domain.RoleMember); err != nil {
			return nil, err
		}
	}

	s.appendSystemMessage(chat, domain.SystemCreated, actorID)
	return s.toResponse(chat, nil)
}

// CreateGroupChat creates a named group with the actor as owner.
// Every initial member must be a friend of the actor.
func (s *chatService) CreateGroupChat(actorID, name string, memberIDs []string) (*domain.ChatResponse, error) {
	for _, uid := range memberIDs {
		if uid == actorID {
			continue
		}
		friends, err := s.friendRepo.FriendshipExists(actorID, uid)
		if err != nil {
			return nil, err
		}
		if !friends {
			return nil, common.ErrNotFriends
		}
	}

	chat := &domain.Chat{
		ID:        uuid.New().String(),
		Type:      domain.ChatGroup,
		Name:      name,
		CreatorID: actorID,
	}
	if err := s.chatRepo.Create(chat); err != nil {
		return nil, err
	}

	if err := s.addMembership(chat.ID, actorID, domain.RoleOwner); err != nil {
		return nil, err
	}
	for _, uid := range memberIDs {
		if uid == actorID {
			continue
		}
		if err := s.addMembership(chat.ID, uid, domain.RoleMember); err != nil {
			return nil, err
		}
	}

	msg := s.appendSystemMessage(chat, domain.SystemCreated, actorID)
	for _, uid := range memberIDs {
		s.hub.BroadcastToUser(uid, chatSystemEvent(chat.ID, domain.SystemCreated, actorID, msg))
	}

	return s.toResponse(chat, nil)
}

// GetChat returns a chat the actor is a member of
func (s *chatService) GetChat(actorID, chatID string) (*domain.ChatResponse, error) {
	chat, membership, err := s.requireMembership(chatID, actorID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(chat, membership)
}

// ListChats returns the actor's chats, most recently active first,
// with unread counts.
func (s *chatService) ListChats(actorID string) ([]*domain.ChatResponse, error) {
	chats, err := s.chatRepo.ListByUserID(actorID)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.ChatResponse, 0, len(chats))
	for _, chat := range chats {
		membership, err := s.membershipRepo.Find(chat.ID, actorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		resp, err := s.toResponse(chat, membership)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// AddMember adds a user to a group chat. The actor must be a member
// and must be friends with the target. Idempotent: re-adding an
// existing member is a no-op.
func (s *chatService) AddMember(actorID, chatID, userID string) error {
	chat, _, err := s.requireMembership(chatID, actorID)
	if err != nil {
		return err
	}
	if chat.Type != domain.ChatGroup {
		return common.ErrInvalidInput
	}

	friends, err := s.friendRepo.FriendshipExists(actorID, userID)
	if err != nil {
		return err
	}
	if !friends {
		return common.ErrNotFriends
	}

	if err := s.addMembership(chatID, userID, domain.RoleMember); err != nil {
		return err
	}

	msg := s.appendSystemMessage(chat, domain.SystemJoined, userID)
	s.hub.BroadcastToChat(chatID, chatSystemEvent(chatID, domain.SystemJoined, userID, msg))
	s.hub.BroadcastToUser(userID, chatSystemEvent(chatID, domain.SystemJoined, userID, msg))
	return nil
}

// Leave removes the actor from a group chat. Any member may leave;
// direct chats have no membership mutations.
func (s *chatService) Leave(actorID, chatID string) error {
	chat, _, err := s.requireMembership(chatID, actorID)
	if err != nil {
		return err
	}
	if chat.Type != domain.ChatGroup {
		return common.ErrInvalidInput
	}

	if err := s.membershipRepo.Delete(chatID, actorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotChatMember
		}
		return err
	}

	msg := s.appendSystemMessage(chat, domain.SystemLeft, actorID)
	s.hub.BroadcastToChat(chatID, chatSystemEvent(chatID, domain.SystemLeft, actorID, msg))
	return nil
}

// Rename renames a group chat. Owner or admin only.
func (s *chatService) Rename(actorID, chatID, name string) error {
	chat, membership, err := s.requireMembership(chatID, actorID)
	if err != nil {
		return err
	}
	if chat.Type != domain.ChatGroup {
		return common.ErrInvalidInput
	}
	if membership.Role != domain.RoleOwner && membership.Role != domain.RoleAdmin {
		return common.ErrForbidden
	}

	if err := s.chatRepo.Rename(chatID, name); err != nil {
		return err
	}

	msg := s.appendSystemMessage(chat, domain.SystemRenamed, actorID)
	s.hub.BroadcastToChat(chatID, chatSystemEvent(chatID, domain.SystemRenamed, actorID, msg))
	return nil
}

// SetMuted flips the actor's mute flag on their own membership
func (s *chatService) SetMuted(actorID, chatID string, muted bool) error {
	if _, _, err := s.requireMembership(chatID, actorID); err != nil {
		return err
	}
	return s.membershipRepo.SetMuted(chatID, actorID, muted)
}

// IsMember satisfies ws.MembershipChecker for join-time room checks
func (s *chatService) IsMember(chatID, userID string) (bool, error) {
	_, err := s.membershipRepo.Find(chatID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// requireMembership is the authorization gate for chat operations:
// the chat must exist and the actor must hold a membership row.
func (s *chatService) requireMembership(chatID, actorID string) (*domain.Chat, *domain.ChatMembership, error) {
	chat, err := s.chatRepo.FindByID(chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, common.ErrChatNotFound
		}
		return nil, nil, err
	}

	membership, err := s.membershipRepo.Find(chatID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, common.ErrNotChatMember
		}
		return nil, nil, err
	}
	return chat, membership, nil
}

func (s *chatService) addMembership(chatID, userID, role string) error {
	return s.membershipRepo.Upsert(&domain.ChatMembership{
		ID:     uuid.New().String(),
		ChatID: chatID,
		UserID: userID,
		Role:   role,
	})
}

// appendSystemMessage inserts a non-content message recording a
// membership event. Exempt from human-content validation. Store
// failures here are logged-and-dropped by design: the membership
// change itself already committed.
func (s *chatService) appendSystemMessage(chat *domain.Chat, action, actorID string) *domain.MessageResponse {
	msg := &domain.Message{
		ID:           uuid.New().String(),
		ChatID:       chat.ID,
		SenderID:     actorID,
		Type:         domain.MessageSystem,
		SystemAction: action,
		CreatedAt:    time.Now(),
	}
	if err := s.messageRepo.Create(msg); err != nil {
		return nil
	}
	_ = s.chatRepo.UpdateLastMessage(chat.ID, systemPreview(action), actorID, msg.CreatedAt)
	return msg.ToResponse()
}

// systemPreview is the fixed label shown in chat lists for system rows
func systemPreview(action string) string {
	switch action {
	case domain.SystemCreated:
		return "chat created"
	case domain.SystemJoined:
		return "member joined"
	case domain.SystemLeft:
		return "member left"
	case domain.SystemRenamed:
		return "chat renamed"
	default:
		return ""
	}
}

func (s *chatService) toResponse(chat *domain.Chat, membership *domain.ChatMembership) (*domain.ChatResponse, error) {
	participants, err := s.membershipRepo.ListUserIDs(chat.ID)
	if err != nil {
		return nil, err
	}

	resp := chat.ToResponse(participants)
	if membership != nil && s.unread != nil {
		count, err := s.unread.UnreadCountForMembership(membership)
		if err == nil {
			resp.UnreadCount = count
		}
	}
	return resp, nil
}
