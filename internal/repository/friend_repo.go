package repository

import (
	"github.com/studyhive/studyhive-backend/internal/domain"
	"gorm.io/gorm"
)

// FriendRepository friendship and friend-request data access interface
type FriendRepository interface {
	CreateRequest(req *domain.FriendRequest) error
	FindRequestByID(id string) (*domain.FriendRequest, error)
	FindRequestByPair(fromUserID, toUserID string) (*domain.FriendRequest, error)
	SaveRequest(req *domain.FriendRequest) error
	DeleteRequest(id string) error
	ListIncoming(userID string) ([]*domain.FriendRequest, error)
	ListOutgoing(userID string) ([]*domain.FriendRequest, error)

	CreateFriendship(f *domain.Friendship) error
	FriendshipExists(userA, userB string) (bool, error)
	DeleteFriendship(userA, userB string) error
	ListFriendIDs(userID string) ([]string, error)
}

type friendRepository struct {
	db *gorm.DB
}

// NewFriendRepository creates a new FriendRepository
func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

func (r *friendRepository) CreateRequest(req *domain.FriendRequest) error {
	return r.db.Create(req).Error
}

func (r *friendRepository) FindRequestByID(id string) (*domain.FriendRequest, error) {
	var req domain.FriendRequest
	if err := r.db.Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *friendRepository) FindRequestByPair(fromUserID, toUserID string) (*domain.FriendRequest, error) {
	var req domain.FriendRequest
	err := r.db.Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *friendRepository) SaveRequest(req *domain.FriendRequest) error {
	return r.db.Save(req).Error
}

func (r *friendRepository) DeleteRequest(id string) error {
	result := r.db.Where("id = ?", id).Delete(&domain.FriendRequest{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *friendRepository) ListIncoming(userID string) ([]*domain.FriendRequest, error) {
	var reqs []*domain.FriendRequest
	err := r.db.Where("to_user_id = ? AND status = ?", userID, domain.RequestPending).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *friendRepository) ListOutgoing(userID string) ([]*domain.FriendRequest, error) {
	var reqs []*domain.FriendRequest
	err := r.db.Where("from_user_id = ? AND status = ?", userID, domain.RequestPending).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// CreateFriendship inserts the canonical edge. The caller must order the
// pair; the unique index on (user_a, user_b) rejects duplicates.
func (r *friendRepository) CreateFriendship(f *domain.Friendship) error {
	return r.db.Create(f).Error
}

func (r *friendRepository) FriendshipExists(userA, userB string) (bool, error) {
	a, b := domain.CanonicalPair(userA, userB)
	var count int64
	err := r.db.Model(&domain.Friendship{}).
		Where("user_a = ? AND user_b = ?", a, b).
		Count(&count).Error
	return count > 0, err
}

func (r *friendRepository) DeleteFriendship(userA, userB string) error {
	a, b := domain.CanonicalPair(userA, userB)
	result := r.db.Where("user_a = ? AND user_b = ?", a, b).Delete(&domain.Friendship{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *friendRepository) ListFriendIDs(userID string) ([]string, error) {
	var edges []domain.Friendship
	err := r.db.Where("user_a = ? OR user_b = ?", userID, userID).
		Order("created_at DESC").
		Find(&edges).Error
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		if e.UserA == userID {
			ids = append(ids, e.UserB)
		} else {
			ids = append(ids, e.UserA)
		}
	}
	return ids, nil
}
