package repository

import (
	"time"

	"github.com/studyhive/studyhive-backend/internal/domain"
	"gorm.io/gorm"
)

// MessageRepository message data access interface
type MessageRepository interface {
	Create(msg *domain.Message) error
	FindByID(id string) (*domain.Message, error)
	FindPage(chatID string, page domain.MessagePage) ([]*domain.Message, error)
	Save(msg *domain.Message) error
	CountUnread(chatID, userID string, after *time.Time) (int64, error)
	AnonymizeSender(userID string) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(msg *domain.Message) error {
	return r.db.Create(msg).Error
}

func (r *messageRepository) FindByID(id string) (*domain.Message, error) {
	var msg domain.Message
	if err := r.db.Where("id = ?", id).First(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// FindPage returns a page of non-deleted messages ordered oldest to
// newest, bounded by created_at cursors.
func (r *messageRepository) FindPage(chatID string, page domain.MessagePage) ([]*domain.Message, error) {
	q := r.db.Where("chat_id = ? AND is_deleted = ?", chatID, false)
	if page.Before != nil {
		q = q.Where("created_at < ?", *page.Before)
	}
	if page.After != nil {
		q = q.Where("created_at > ?", *page.After)
	}

	var messages []*domain.Message
	if page.After != nil {
		// Walking forwards from a cursor
		err := q.Order("created_at ASC").Limit(page.Limit).Find(&messages).Error
		return messages, err
	}

	// Default / "before" paging walks backwards from the end: take the
	// newest N, then flip to ascending order.
	if err := q.Order("created_at DESC").Limit(page.Limit).Find(&messages).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *messageRepository) Save(msg *domain.Message) error {
	return r.db.Save(msg).Error
}

// CountUnread counts messages created after the cursor that were not
// authored by the user. A nil cursor means everything is unread.
func (r *messageRepository) CountUnread(chatID, userID string, after *time.Time) (int64, error) {
	q := r.db.Model(&domain.Message{}).
		Where("chat_id = ? AND sender_id != ? AND is_deleted = ?", chatID, userID, false)
	if after != nil {
		q = q.Where("created_at > ?", *after)
	}

	var count int64
	err := q.Count(&count).Error
	return count, err
}

// AnonymizeSender marks all messages of a deleted account
func (r *messageRepository) AnonymizeSender(userID string) error {
	return r.db.Model(&domain.Message{}).
		Where("sender_id = ?", userID).
		Update("sender_deleted", true).Error
}
