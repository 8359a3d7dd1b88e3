package repository

import (
	"time"

	"github.com/studyhive/studyhive-backend/internal/domain"
	"gorm.io/gorm"
)

// ChatRepository chat data access interface
type ChatRepository interface {
	Create(chat *domain.Chat) error
	FindByID(id string) (*domain.Chat, error)
	FindByPairKey(pairKey string) (*domain.Chat, error)
	ListByUserID(userID string) ([]*domain.Chat, error)
	Rename(id, name string) error
	UpdateLastMessage(chatID, content, senderID string, sentAt time.Time) error
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(chat *domain.Chat) error {
	return r.db.Create(chat).Error
}

func (r *chatRepository) FindByID(id string) (*domain.Chat, error) {
	var chat domain.Chat
	if err := r.db.Where("id = ?", id).First(&chat).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) FindByPairKey(pairKey string) (*domain.Chat, error) {
	var chat domain.Chat
	if err := r.db.Where("pair_key = ?", pairKey).First(&chat).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

// ListByUserID returns the chats a user is a member of, most recently
// active first.
func (r *chatRepository) ListByUserID(userID string) ([]*domain.Chat, error) {
	var chats []*domain.Chat
	err := r.db.
		Joins("JOIN chat_memberships ON chat_memberships.chat_id = chats.id").
		Where("chat_memberships.user_id = ?", userID).
		Order("chats.last_message_at DESC").
		Find(&chats).Error
	return chats, err
}

func (r *chatRepository) Rename(id, name string) error {
	result := r.db.Model(&domain.Chat{}).Where("id = ?", id).Update("name", name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateLastMessage refreshes the denormalized preview. The write is
// conditional on the timestamp being at least as new as the stored one,
// so concurrent senders cannot regress the snapshot. Last write wins
// among equal timestamps; the message log is the source of truth.
func (r *chatRepository) UpdateLastMessage(chatID, content, senderID string, sentAt time.Time) error {
	if runes := []rune(content); len(runes) > 100 {
		content = string(runes[:100])
	}
	return r.db.Model(&domain.Chat{}).
		Where("id = ? AND (last_message_at IS NULL OR last_message_at <= ?)", chatID, sentAt).
		Updates(map[string]interface{}{
			"last_message_at":        sentAt,
			"last_message_content":   content,
			"last_message_sender_id": senderID,
		}).Error
}
