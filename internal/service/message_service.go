package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studyhive/studyhive-backend/internal/common"
	"github.com/studyhive/studyhive-backend/internal/domain"
	"github.com/studyhive/studyhive-backend/internal/repository"
	"github.com/studyhive/studyhive-backend/pkg/cache"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// MessageService message log business logic
type MessageService interface {
	Send(actorID, chatID, content string) (*domain.MessageResponse, error)
	GetMessages(actorID, chatID string, page domain.MessagePage) ([]*domain.MessageResponse, error)
	Edit(actorID, chatID, messageID, content string) (*domain.MessageResponse, error)
	Delete(actorID, chatID, messageID string) error
	UnreadCount(actorID, chatID string) (int64, error)
	UnreadCountForMembership(m *domain.ChatMembership) (int64, error)
}

type messageService struct {
	messageRepo    repository.MessageRepository
	membershipRepo repository.MembershipRepository
	chatRepo       repository.ChatRepository
	cache          cache.Service
	hub            Broadcaster
}

// NewMessageService creates a new MessageService. cacheService may be
// nil when Redis is unavailable.
func NewMessageService(
	messageRepo repository.MessageRepository,
	membershipRepo repository.MembershipRepository,
	chatRepo repository.ChatRepository,
	cacheService cache.Service,
	hub Broadcaster,
) MessageService {
	if hub == nil {
		hub = NopBroadcaster()
	}
	return &messageService{
		messageRepo:    messageRepo,
		membershipRepo: membershipRepo,
		chatRepo:       chatRepo,
		cache:          cacheService,
		hub:            hub,
	}
}

// Send persists a text message and broadcasts it to the chat room.
// The broadcast happens only after the write succeeds, so a live
// message is always backed by a stored one.
func (s *messageService) Send(actorID, chatID, content string) (*domain.MessageResponse, error) {
	if _, err := s.requireMembership(chatID, actorID); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, common.ErrInvalidInput
	}
	if len([]rune(content)) > domain.MaxContentLength {
		return nil, common.ErrInvalidInput
	}

	msg := &domain.Message{
		ID:        uuid.New().String(),
		ChatID:    chatID,
		SenderID:  actorID,
		Content:   content,
		Type:      domain.MessageText,
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Create(msg); err != nil {
		return nil, err
	}

	// Denormalized preview: conditional write, last write wins among
	// concurrent senders. The log above is the source of truth.
	_ = s.chatRepo.UpdateLastMessage(chatID, content, actorID, msg.CreatedAt)

	s.invalidateUnread(chatID, actorID)

	resp := msg.ToResponse()
	s.hub.BroadcastToChat(chatID, chatMessageEvent(resp))
	return resp, nil
}

// GetMessages returns a page ordered oldest to newest, excluding
// soft-deleted rows, then advances the actor's read cursor to the
// last message of the page.
func (s *messageService) GetMessages(actorID, chatID string, page domain.MessagePage) ([]*domain.MessageResponse, error) {
	if _, err := s.requireMembership(chatID, actorID); err != nil {
		return nil, err
	}

	if page.Limit <= 0 {
		page.Limit = defaultPageSize
	}
	if page.Limit > maxPageSize {
		page.Limit = maxPageSize
	}

	messages, err := s.messageRepo.FindPage(chatID, page)
	if err != nil {
		return nil, err
	}

	if len(messages) > 0 {
		last := messages[len(messages)-1]
		if err := s.membershipRepo.UpdateLastRead(chatID, actorID, last.ID, last.CreatedAt); err == nil {
			if s.cache != nil {
				_ = s.cache.InvalidateUnread(context.Background(), chatID, actorID)
			}
		}
	}

	responses := make([]*domain.MessageResponse, len(messages))
	for i, m := range messages {
		responses[i] = m.ToResponse()
	}
	return responses, nil
}

// Edit updates the content of the actor's own text message
func (s *messageService) Edit(actorID, chatID, messageID, content string) (*domain.MessageResponse, error) {
	msg, err := s.ownMessage(actorID, chatID, messageID)
	if err != nil {
		return nil, err
	}
	if msg.Type != domain.MessageText {
		return nil, common.ErrInvalidInput
	}

	content = strings.TrimSpace(content)
	if content == "" || len([]rune(content)) > domain.MaxContentLength {
		return nil, common.ErrInvalidInput
	}

	msg.Content = content
	msg.IsEdited = true
	if err := s.messageRepo.Save(msg); err != nil {
		return nil, err
	}
	return msg.ToResponse(), nil
}

// Delete soft-deletes the actor's own message. Reads filter the flag;
// the row stays in the log.
func (s *messageService) Delete(actorID, chatID, messageID string) error {
	msg, err := s.ownMessage(actorID, chatID, messageID)
	if err != nil {
		return err
	}

	msg.IsDeleted = true
	return s.messageRepo.Save(msg)
}

// UnreadCount counts messages after the actor's read cursor that
// they did not author.
func (s *messageService) UnreadCount(actorID, chatID string) (int64, error) {
	membership, err := s.requireMembership(chatID, actorID)
	if err != nil {
		return 0, err
	}
	return s.UnreadCountForMembership(membership)
}

// UnreadCountForMembership computes (or serves from cache) the unread
// count for an already-loaded membership row.
func (s *messageService) UnreadCountForMembership(m *domain.ChatMembership) (int64, error) {
	ctx := context.Background()
	if s.cache != nil {
		if count, err := s.cache.GetUnreadCount(ctx, m.UserID, m.ChatID); err == nil {
			return count, nil
		}
	}

	count, err := s.messageRepo.CountUnread(m.ChatID, m.UserID, m.LastReadAt)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		_ = s.cache.SetUnreadCount(ctx, m.UserID, m.ChatID, count)
	}
	return count, nil
}

func (s *messageService) requireMembership(chatID, actorID string) (*domain.ChatMembership, error) {
	membership, err := s.membershipRepo.Find(chatID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotChatMember
		}
		return nil, err
	}
	return membership, nil
}

// ownMessage loads a message and verifies it belongs to the chat and
// was authored by the actor
func (s *messageService) ownMessage(actorID, chatID, messageID string) (*domain.Message, error) {
	if _, err := s.requireMembership(chatID, actorID); err != nil {
		return nil, err
	}

	msg, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrMessageNotFound
		}
		return nil, err
	}
	if msg.ChatID != chatID {
		return nil, common.ErrMessageNotFound
	}
	if msg.SenderID != actorID {
		return nil, common.ErrForbidden
	}
	return msg, nil
}

// invalidateUnread drops cached unread counters for every member of a
// chat except the sender
func (s *messageService) invalidateUnread(chatID, senderID string) {
	if s.cache == nil {
		return
	}
	memberIDs, err := s.membershipRepo.ListUserIDs(chatID)
	if err != nil {
		return
	}
	others := make([]string, 0, len(memberIDs))
	for _, uid := range memberIDs {
		if uid != senderID {
			others = append(others, uid)
		}
	}
	_ = s.cache.InvalidateUnread(context.Background(), chatID, others...)
}
