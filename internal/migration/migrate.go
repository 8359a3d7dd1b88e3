package migration

import (
	"github.com/studyhive/studyhive-backend/internal/domain"
	"gorm.io/gorm"
)

// Run migrates the chat domain schema. The unique indexes declared on
// the models (friendship canonical pair, (chat, user) membership,
// direct-chat pair key) are the concurrency backstops the services
// rely on.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.FriendRequest{},
		&domain.Friendship{},
		&domain.Chat{},
		&domain.ChatMembership{},
		&domain.Message{},
	)
}
