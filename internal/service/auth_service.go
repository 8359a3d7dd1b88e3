package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/studyhive/studyhive-backend/internal/common"
	"github.com/studyhive/studyhive-backend/internal/domain"
	"github.com/studyhive/studyhive-backend/internal/repository"
	"github.com/studyhive/studyhive-backend/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService account and token business logic
type AuthService interface {
	Signup(req *domain.SignupRequest) (*domain.TokenResponse, error)
	Login(req *domain.LoginRequest) (*domain.TokenResponse, error)
	Refresh(refreshToken string) (*domain.TokenResponse, error)
	Me(userID string) (*domain.UserResponse, error)
	DeleteAccount(userID string) error
}

type authService struct {
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	jwtManager  *jwt.Manager
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, messageRepo repository.MessageRepository, jwtManager *jwt.Manager) AuthService {
	return &authService{
		userRepo:    userRepo,
		messageRepo: messageRepo,
		jwtManager:  jwtManager,
	}
}

// Signup registers a new account and issues a token pair
func (s *authService) Signup(req *domain.SignupRequest) (*domain.TokenResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         "user",
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, common.ErrUserAlreadyExists
		}
		return nil, err
	}

	return s.issueTokens(user)
}

// Login verifies credentials and issues a token pair
func (s *authService) Login(req *domain.LoginRequest) (*domain.TokenResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a new pair
func (s *authService) Refresh(refreshToken string) (*domain.TokenResponse, error) {
	claims, err := s.jwtManager.VerifyRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, common.ErrExpiredToken
		}
		return nil, common.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}

	return s.issueTokens(user)
}

// Me returns the authenticated user's profile
func (s *authService) Me(userID string) (*domain.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// DeleteAccount anonymizes the user's messages in place, then
// hard-deletes the account row.
func (s *authService) DeleteAccount(userID string) error {
	if err := s.messageRepo.AnonymizeSender(userID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *authService) issueTokens(user *domain.User) (*domain.TokenResponse, error) {
	access, refresh, err := s.jwtManager.GenerateTokenPair(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	return &domain.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user.ToResponse(),
	}, nil
}
