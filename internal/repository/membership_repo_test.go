package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhive/studyhive-backend/internal/domain"
	"gorm.io/gorm"
)

func TestMembershipUpsert_Idempotent(t *testing.T) {
	repo := NewMembershipRepository(openTestDB(t))

	require.NoError(t, repo.Upsert(&domain.ChatMembership{
		ID: "m-1", ChatID: "chat-1", UserID: "user-1", Role: domain.RoleOwner,
	}))

	// Re-adding the same member is a no-op and keeps the original row
	require.NoError(t, repo.Upsert(&domain.ChatMembership{
		ID: "m-2", ChatID: "chat-1", UserID: "user-1", Role: domain.RoleMember,
	}))

	members, err := repo.ListByChat("chat-1")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "m-1", members[0].ID)
	assert.Equal(t, domain.RoleOwner, members[0].Role)
}

func TestMembershipDelete_MissingRow(t *testing.T) {
	repo := NewMembershipRepository(openTestDB(t))

	assert.ErrorIs(t, repo.Delete("chat-1", "ghost"), gorm.ErrRecordNotFound)
}

func TestListUserIDs(t *testing.T) {
	repo := NewMembershipRepository(openTestDB(t))

	require.NoError(t, repo.Upsert(&domain.ChatMembership{ID: "m-1", ChatID: "chat-1", UserID: "user-1"}))
	require.NoError(t, repo.Upsert(&domain.ChatMembership{ID: "m-2", ChatID: "chat-1", UserID: "user-2"}))
	require.NoError(t, repo.Upsert(&domain.ChatMembership{ID: "m-3", ChatID: "chat-2", UserID: "user-3"}))

	ids, err := repo.ListUserIDs("chat-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"user-1", "user-2"}, ids)
}

func TestUpdateLastRead_Monotonic(t *testing.T) {
	repo := NewMembershipRepository(openTestDB(t))

	require.NoError(t, repo.Upsert(&domain.ChatMembership{
		ID: "m-1", ChatID: "chat-1", UserID: "user-1",
	}))

	newer := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	require.NoError(t, repo.UpdateLastRead("chat-1", "user-1", "msg-2", newer))

	// A stale marker from a slow request must not move the cursor back
	require.NoError(t, repo.UpdateLastRead("chat-1", "user-1", "msg-1", older))

	m, err := repo.Find("chat-1", "user-1")
	require.NoError(t, err)
	require.NotNil(t, m.LastReadAt)
	assert.True(t, m.LastReadAt.Equal(newer))
	assert.Equal(t, "msg-2", m.LastReadMessageID)
}

func TestSetMuted(t *testing.T) {
	repo := NewMembershipRepository(openTestDB(t))

	require.NoError(t, repo.Upsert(&domain.ChatMembership{
		ID: "m-1", ChatID: "chat-1", UserID: "user-1",
	}))

	require.NoError(t, repo.SetMuted("chat-1", "user-1", true))

	m, err := repo.Find("chat-1", "user-1")
	require.NoError(t, err)
	assert.True(t, m.IsMuted)
}
