package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhive/studyhive-backend/internal/domain"
	"gorm.io/gorm"
)

func TestChatCreate_PairKeyUnique(t *testing.T) {
	repo := NewChatRepository(openTestDB(t))

	pairKey := "user-1:user-2"
	require.NoError(t, repo.Create(&domain.Chat{
		ID: "chat-1", Type: domain.ChatDirect, CreatorID: "user-1", PairKey: &pairKey,
	}))

	// The loser of a concurrent direct-chat create hits the unique index
	err := repo.Create(&domain.Chat{
		ID: "chat-2", Type: domain.ChatDirect, CreatorID: "user-2", PairKey: &pairKey,
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	found, err := repo.FindByPairKey(pairKey)
	require.NoError(t, err)
	assert.Equal(t, "chat-1", found.ID)
}

func TestChatCreate_GroupChatsHaveNoPairKey(t *testing.T) {
	repo := NewChatRepository(openTestDB(t))

	// NULL pair keys never collide
	require.NoError(t, repo.Create(&domain.Chat{ID: "g-1", Type: domain.ChatGroup, CreatorID: "user-1"}))
	require.NoError(t, repo.Create(&domain.Chat{ID: "g-2", Type: domain.ChatGroup, CreatorID: "user-1"}))
}

func TestUpdateLastMessage_NeverRegresses(t *testing.T) {
	db := openTestDB(t)
	repo := NewChatRepository(db)

	require.NoError(t, repo.Create(&domain.Chat{ID: "chat-1", Type: domain.ChatGroup, CreatorID: "user-1"}))

	newer := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Minute)

	require.NoError(t, repo.UpdateLastMessage("chat-1", "second", "user-2", newer))
	require.NoError(t, repo.UpdateLastMessage("chat-1", "first", "user-1", older))

	chat, err := repo.FindByID("chat-1")
	require.NoError(t, err)
	require.NotNil(t, chat.LastMessageAt)
	assert.True(t, chat.LastMessageAt.Equal(newer))
	assert.Equal(t, "second", chat.LastMessageContent)
	assert.Equal(t, "user-2", chat.LastMessageSenderID)
}

func TestUpdateLastMessage_TruncatesPreview(t *testing.T) {
	repo := NewChatRepository(openTestDB(t))

	require.NoError(t, repo.Create(&domain.Chat{ID: "chat-1", Type: domain.ChatGroup, CreatorID: "user-1"}))

	long := strings.Repeat("я", 250)
	require.NoError(t, repo.UpdateLastMessage("chat-1", long, "user-1", time.Now()))

	chat, err := repo.FindByID("chat-1")
	require.NoError(t, err)
	assert.Equal(t, 100, len([]rune(chat.LastMessageContent)))
}

func TestRename_MissingChat(t *testing.T) {
	repo := NewChatRepository(openTestDB(t))

	assert.ErrorIs(t, repo.Rename("ghost", "name"), gorm.ErrRecordNotFound)
}

func TestListByUserID_MembershipScopedAndOrdered(t *testing.T) {
	db := openTestDB(t)
	chatRepo := NewChatRepository(db)
	memberRepo := NewMembershipRepository(db)

	older := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	require.NoError(t, chatRepo.Create(&domain.Chat{ID: "chat-1", Type: domain.ChatGroup, CreatorID: "user-1", LastMessageAt: &older}))
	require.NoError(t, chatRepo.Create(&domain.Chat{ID: "chat-2", Type: domain.ChatGroup, CreatorID: "user-1", LastMessageAt: &newer}))
	require.NoError(t, chatRepo.Create(&domain.Chat{ID: "chat-3", Type: domain.ChatGroup, CreatorID: "user-9", LastMessageAt: &newer}))

	require.NoError(t, memberRepo.Upsert(&domain.ChatMembership{ID: "m-1", ChatID: "chat-1", UserID: "user-1"}))
	require.NoError(t, memberRepo.Upsert(&domain.ChatMembership{ID: "m-2", ChatID: "chat-2", UserID: "user-1"}))
	require.NoError(t, memberRepo.Upsert(&domain.ChatMembership{ID: "m-3", ChatID: "chat-3", UserID: "user-9"}))

	chats, err := chatRepo.ListByUserID("user-1")
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, "chat-2", chats[0].ID)
	assert.Equal(t, "chat-1", chats[1].ID)
}
