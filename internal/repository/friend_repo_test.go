package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhive/studyhive-backend/internal/domain"
	"gorm.io/gorm"
)

func TestFriendship_UniquePairBackstop(t *testing.T) {
	repo := NewFriendRepository(openTestDB(t))

	require.NoError(t, repo.CreateFriendship(&domain.Friendship{
		ID: "edge-1", UserA: "amy", UserB: "zed",
	}))

	// A second edge for the same canonical pair hits the unique index
	err := repo.CreateFriendship(&domain.Friendship{
		ID: "edge-2", UserA: "amy", UserB: "zed",
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestFriendshipExists_OrderInsensitive(t *testing.T) {
	repo := NewFriendRepository(openTestDB(t))

	require.NoError(t, repo.CreateFriendship(&domain.Friendship{
		ID: "edge-1", UserA: "amy", UserB: "zed",
	}))

	ok, err := repo.FriendshipExists("zed", "amy")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.FriendshipExists("amy", "zed")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.FriendshipExists("amy", "bob")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteFriendship_CanonicalizesArgs(t *testing.T) {
	repo := NewFriendRepository(openTestDB(t))

	require.NoError(t, repo.CreateFriendship(&domain.Friendship{
		ID: "edge-1", UserA: "amy", UserB: "zed",
	}))

	// Reversed argument order still resolves the stored edge
	require.NoError(t, repo.DeleteFriendship("zed", "amy"))

	assert.ErrorIs(t, repo.DeleteFriendship("zed", "amy"), gorm.ErrRecordNotFound)
}

func TestListFriendIDs_ReturnsOtherSideOfEdge(t *testing.T) {
	repo := NewFriendRepository(openTestDB(t))

	require.NoError(t, repo.CreateFriendship(&domain.Friendship{ID: "e1", UserA: "amy", UserB: "bob"}))
	require.NoError(t, repo.CreateFriendship(&domain.Friendship{ID: "e2", UserA: "bob", UserB: "zed"}))

	ids, err := repo.ListFriendIDs("bob")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"amy", "zed"}, ids)
}

func TestFriendRequest_UniquePerDirectedPair(t *testing.T) {
	repo := NewFriendRepository(openTestDB(t))

	require.NoError(t, repo.CreateRequest(&domain.FriendRequest{
		ID: "req-1", FromUserID: "user-1", ToUserID: "user-2", Status: domain.RequestPending,
	}))

	err := repo.CreateRequest(&domain.FriendRequest{
		ID: "req-2", FromUserID: "user-1", ToUserID: "user-2", Status: domain.RequestPending,
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// The reverse direction is a distinct row
	assert.NoError(t, repo.CreateRequest(&domain.FriendRequest{
		ID: "req-3", FromUserID: "user-2", ToUserID: "user-1", Status: domain.RequestPending,
	}))
}

func TestListIncoming_PendingOnly(t *testing.T) {
	repo := NewFriendRepository(openTestDB(t))

	require.NoError(t, repo.CreateRequest(&domain.FriendRequest{
		ID: "req-1", FromUserID: "user-1", ToUserID: "user-3", Status: domain.RequestPending,
	}))
	require.NoError(t, repo.CreateRequest(&domain.FriendRequest{
		ID: "req-2", FromUserID: "user-2", ToUserID: "user-3", Status: domain.RequestDeclined,
	}))

	incoming, err := repo.ListIncoming("user-3")
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, "req-1", incoming[0].ID)

	outgoing, err := repo.ListOutgoing("user-1")
	require.NoError(t, err)
	assert.Len(t, outgoing, 1)
}
