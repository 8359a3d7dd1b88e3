package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/studyhive/studyhive-backend/internal/common"
	"github.com/studyhive/studyhive-backend/internal/domain"
	"github.com/studyhive/studyhive-backend/internal/repository"
	"gorm.io/gorm"
)

// FriendService friendship graph business logic
type FriendService interface {
	SendRequest(fromUserID, toUserID string) (*domain.FriendRequestResponse, error)
	AcceptRequest(actorID, requestID string) error
	DeclineRequest(actorID, requestID string) error
	CancelRequest(actorID, requestID string) error
	Unfriend(actorID, otherUserID string) error
	AreFriends(userA, userB string) (bool, error)
	ListFriends(userID string) ([]*domain.UserResponse, error)
	ListIncoming(userID string) ([]*domain.FriendRequestResponse, error)
	ListOutgoing(userID string) ([]*domain.FriendRequestResponse, error)
}

type friendService struct {
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
	hub        Broadcaster
}

// NewFriendService creates a new FriendService
func NewFriendService(friendRepo repository.FriendRepository, userRepo repository.UserRepository, hub Broadcaster) FriendService {
	if hub == nil {
		hub = NopBroadcaster()
	}
	return &friendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
		hub:        hub,
	}
}

// SendRequest creates a pending request, or auto-accepts when a
// reverse request is already pending (mutual request).
func (s *friendService) SendRequest(fromUserID, toUserID string) (*domain.FriendRequestResponse, error) {
	if fromUserID == toUserID {
		return nil, common.ErrInvalidInput
	}

	target, err := s.userRepo.FindByID(toUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}

	friends, err := s.friendRepo.FriendshipExists(fromUserID, toUserID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, common.ErrAlreadyFriends
	}

	// Mutual request: the other side already asked, accept it instead
	// of holding two pending rows.
	reverse, err := s.friendRepo.FindRequestByPair(toUserID, fromUserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if reverse != nil && reverse.Status == domain.RequestPending {
		if err := s.acceptPending(reverse); err != nil {
			return nil, err
		}
		return s.toRequestResponse(reverse, target), nil
	}

	existing, err := s.friendRepo.FindRequestByPair(fromUserID, toUserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Status == domain.RequestPending {
			return nil, common.ErrFriendRequestExists
		}
		// Re-request after a decline reuses the row
		existing.Status = domain.RequestPending
		if err := s.friendRepo.SaveRequest(existing); err != nil {
			return nil, err
		}
		return s.toRequestResponse(existing, target), nil
	}

	req := &domain.FriendRequest{
		ID:         uuid.New().String(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Status:     domain.RequestPending,
	}
	if err := s.friendRepo.CreateRequest(req); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, common.ErrFriendRequestExists
		}
		return nil, err
	}

	s.hub.BroadcastToUser(toUserID, friendRequestEvent(fromUserID))
	return s.toRequestResponse(req, target), nil
}

// AcceptRequest flips the request to accepted and creates the canonical
// friendship edge. Only the recipient may accept.
func (s *friendService) AcceptRequest(actorID, requestID string) error {
	req, err := s.friendRepo.FindRequestByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrRequestNotFound
		}
		return err
	}
	if req.ToUserID != actorID {
		return common.ErrForbidden
	}
	if req.Status != domain.RequestPending {
		return common.ErrRequestNotFound
	}
	return s.acceptPending(req)
}

// acceptPending creates the friendship row and marks the request
// accepted. The mutual-request flow is not transactionally guarded;
// the unique index on the canonical pair is the backstop, and a
// duplicate edge from a concurrent accept is treated as already done.
func (s *friendService) acceptPending(req *domain.FriendRequest) error {
	a, b := domain.CanonicalPair(req.FromUserID, req.ToUserID)
	edge := &domain.Friendship{
		ID:    uuid.New().String(),
		UserA: a,
		UserB: b,
	}
	if err := s.friendRepo.CreateFriendship(edge); err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}

	req.Status = domain.RequestAccepted
	if err := s.friendRepo.SaveRequest(req); err != nil {
		return err
	}

	s.hub.BroadcastToUser(req.FromUserID, friendAcceptedEvent(req.ToUserID))
	return nil
}

// DeclineRequest marks a pending request declined. Only the recipient
// may decline.
func (s *friendService) DeclineRequest(actorID, requestID string) error {
	req, err := s.friendRepo.FindRequestByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrRequestNotFound
		}
		return err
	}
	if req.ToUserID != actorID {
		return common.ErrForbidden
	}
	if req.Status != domain.RequestPending {
		return common.ErrRequestNotFound
	}

	req.Status = domain.RequestDeclined
	return s.friendRepo.SaveRequest(req)
}

// CancelRequest withdraws a pending request. Only the sender may cancel.
func (s *friendService) CancelRequest(actorID, requestID string) error {
	req, err := s.friendRepo.FindRequestByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrRequestNotFound
		}
		return err
	}
	if req.FromUserID != actorID {
		return common.ErrForbidden
	}
	if req.Status != domain.RequestPending {
		return common.ErrRequestNotFound
	}
	return s.friendRepo.DeleteRequest(req.ID)
}

// Unfriend removes the friendship edge
func (s *friendService) Unfriend(actorID, otherUserID string) error {
	if err := s.friendRepo.DeleteFriendship(actorID, otherUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound
		}
		return err
	}
	return nil
}

// AreFriends reports whether an undirected edge exists
func (s *friendService) AreFriends(userA, userB string) (bool, error) {
	return s.friendRepo.FriendshipExists(userA, userB)
}

// ListFriends returns the user's friends with their live-presence flag
func (s *friendService) ListFriends(userID string) ([]*domain.UserResponse, error) {
	ids, err := s.friendRepo.ListFriendIDs(userID)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.UserResponse, 0, len(users))
	for _, u := range users {
		resp := u.ToPublicResponse()
		resp.Online = s.hub.IsOnline(u.ID)
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *friendService) ListIncoming(userID string) ([]*domain.FriendRequestResponse, error) {
	reqs, err := s.friendRepo.ListIncoming(userID)
	if err != nil {
		return nil, err
	}
	return s.withRequestUsers(reqs)
}

func (s *friendService) ListOutgoing(userID string) ([]*domain.FriendRequestResponse, error) {
	reqs, err := s.friendRepo.ListOutgoing(userID)
	if err != nil {
		return nil, err
	}
	return s.withRequestUsers(reqs)
}

func (s *friendService) withRequestUsers(reqs []*domain.FriendRequest) ([]*domain.FriendRequestResponse, error) {
	ids := make([]string, 0, len(reqs)*2)
	for _, r := range reqs {
		ids = append(ids, r.FromUserID, r.ToUserID)
	}
	users, err := s.userRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	responses := make([]*domain.FriendRequestResponse, 0, len(reqs))
	for _, r := range reqs {
		resp := &domain.FriendRequestResponse{
			ID:        r.ID,
			Status:    r.Status,
			CreatedAt: r.CreatedAt,
		}
		if u, ok := byID[r.FromUserID]; ok {
			resp.From = u.ToPublicResponse()
		}
		if u, ok := byID[r.ToUserID]; ok {
			resp.To = u.ToPublicResponse()
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *friendService) toRequestResponse(req *domain.FriendRequest, target *domain.User) *domain.FriendRequestResponse {
	return &domain.FriendRequestResponse{
		ID:        req.ID,
		To:        target.ToPublicResponse(),
		Status:    req.Status,
		CreatedAt: req.CreatedAt,
	}
}
