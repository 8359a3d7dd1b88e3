package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhive/studyhive-backend/internal/domain"
)

// seedMessages inserts n messages one minute apart, alternating sender
// between user-1 and user-2, and returns their timestamps.
func seedMessages(t *testing.T, repo MessageRepository, chatID string, n int) []time.Time {
	t.Helper()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	stamps := make([]time.Time, n)
	for i := 0; i < n; i++ {
		stamps[i] = base.Add(time.Duration(i) * time.Minute)
		sender := "user-1"
		if i%2 == 1 {
			sender = "user-2"
		}
		require.NoError(t, repo.Create(&domain.Message{
			ID:        fmt.Sprintf("msg-%d", i),
			ChatID:    chatID,
			SenderID:  sender,
			Content:   fmt.Sprintf("message %d", i),
			Type:      domain.MessageText,
			CreatedAt: stamps[i],
		}))
	}
	return stamps
}

func TestFindPage_DefaultReturnsNewestAscending(t *testing.T) {
	repo := NewMessageRepository(openTestDB(t))
	seedMessages(t, repo, "chat-1", 5)

	page, err := repo.FindPage("chat-1", domain.MessagePage{Limit: 3})
	require.NoError(t, err)
	require.Len(t, page, 3)

	// The newest three, oldest first
	assert.Equal(t, "msg-2", page[0].ID)
	assert.Equal(t, "msg-3", page[1].ID)
	assert.Equal(t, "msg-4", page[2].ID)
}

func TestFindPage_AfterCursorWalksForward(t *testing.T) {
	repo := NewMessageRepository(openTestDB(t))
	stamps := seedMessages(t, repo, "chat-1", 5)

	page, err := repo.FindPage("chat-1", domain.MessagePage{Limit: 2, After: &stamps[1]})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "msg-2", page[0].ID)
	assert.Equal(t, "msg-3", page[1].ID)
}

func TestFindPage_BeforeCursorWalksBackward(t *testing.T) {
	repo := NewMessageRepository(openTestDB(t))
	stamps := seedMessages(t, repo, "chat-1", 5)

	page, err := repo.FindPage("chat-1", domain.MessagePage{Limit: 2, Before: &stamps[3]})
	require.NoError(t, err)
	require.Len(t, page, 2)

	// The two newest strictly before the cursor, oldest first
	assert.Equal(t, "msg-1", page[0].ID)
	assert.Equal(t, "msg-2", page[1].ID)
}

func TestFindPage_ExcludesSoftDeleted(t *testing.T) {
	repo := NewMessageRepository(openTestDB(t))
	seedMessages(t, repo, "chat-1", 3)

	msg, err := repo.FindByID("msg-1")
	require.NoError(t, err)
	msg.IsDeleted = true
	require.NoError(t, repo.Save(msg))

	page, err := repo.FindPage("chat-1", domain.MessagePage{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "msg-0", page[0].ID)
	assert.Equal(t, "msg-2", page[1].ID)
}

func TestCountUnread_ExcludesOwnAndDeleted(t *testing.T) {
	repo := NewMessageRepository(openTestDB(t))
	stamps := seedMessages(t, repo, "chat-1", 4)

	// Nil cursor: everything not authored by user-1 counts
	count, err := repo.CountUnread("chat-1", "user-1", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// Cursor after msg-1: only msg-3 remains unread for user-1
	count, err = repo.CountUnread("chat-1", "user-1", &stamps[1])
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	msg, err := repo.FindByID("msg-3")
	require.NoError(t, err)
	msg.IsDeleted = true
	require.NoError(t, repo.Save(msg))

	count, err = repo.CountUnread("chat-1", "user-1", &stamps[1])
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestAnonymizeSender_MarksAllAuthoredRows(t *testing.T) {
	repo := NewMessageRepository(openTestDB(t))
	seedMessages(t, repo, "chat-1", 4)

	require.NoError(t, repo.AnonymizeSender("user-2"))

	page, err := repo.FindPage("chat-1", domain.MessagePage{Limit: 10})
	require.NoError(t, err)
	for _, m := range page {
		assert.Equal(t, m.SenderID == "user-2", m.SenderDeleted)
	}
}
