package repository

import (
	"time"

	"github.com/studyhive/studyhive-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MembershipRepository chat membership data access interface
type MembershipRepository interface {
	Upsert(m *domain.ChatMembership) error
	Find(chatID, userID string) (*domain.ChatMembership, error)
	Delete(chatID, userID string) error
	ListByChat(chatID string) ([]*domain.ChatMembership, error)
	ListUserIDs(chatID string) ([]string, error)
	UpdateLastRead(chatID, userID, messageID string, readAt time.Time) error
	SetMuted(chatID, userID string, muted bool) error
}

type membershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

// Upsert inserts a membership row, ignoring the write if the (chat, user)
// pair already exists. Re-adding a member is a no-op, not an error.
func (r *membershipRepository) Upsert(m *domain.ChatMembership) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(m).Error
}

func (r *membershipRepository) Find(chatID, userID string) (*domain.ChatMembership, error) {
	var m domain.ChatMembership
	err := r.db.Where("chat_id = ? AND user_id = ?", chatID, userID).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *membershipRepository) Delete(chatID, userID string) error {
	result := r.db.Where("chat_id = ? AND user_id = ?", chatID, userID).
		Delete(&domain.ChatMembership{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *membershipRepository) ListByChat(chatID string) ([]*domain.ChatMembership, error) {
	var members []*domain.ChatMembership
	err := r.db.Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}

func (r *membershipRepository) ListUserIDs(chatID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&domain.ChatMembership{}).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

// UpdateLastRead advances the unread cursor. The cursor is monotonic:
// a stale read marker never moves it backwards.
func (r *membershipRepository) UpdateLastRead(chatID, userID, messageID string, readAt time.Time) error {
	return r.db.Model(&domain.ChatMembership{}).
		Where("chat_id = ? AND user_id = ? AND (last_read_at IS NULL OR last_read_at <= ?)",
			chatID, userID, readAt).
		Updates(map[string]interface{}{
			"last_read_at":         readAt,
			"last_read_message_id": messageID,
		}).Error
}

// SetMuted flips the mute flag. Membership existence is checked by the
// caller; MySQL reports zero affected rows for a same-value update, so
// RowsAffected is not a reliable existence signal here.
func (r *membershipRepository) SetMuted(chatID, userID string, muted bool) error {
	return r.db.Model(&domain.ChatMembership{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Update("is_muted", muted).Error
}
