package domain

import "time"

// User represents an account. Accounts are hard-deleted; authored
// messages are anonymized in place (sender_deleted) before removal.
type User struct {
	ID           string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Email        string    `gorm:"column:email;size:255;uniqueIndex" json:"email"`
	Username     string    `gorm:"column:username;size:64;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;size:255" json:"-"`
	Role         string    `gorm:"column:role;size:16;default:user" json:"role"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// SignupRequest represents a signup request
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse is the issued token pair
type TokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	User         *UserResponse `json:"user"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username"`
	Online   bool   `json:"online,omitempty"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
	}
}

// ToPublicResponse omits the email address
func (u *User) ToPublicResponse() *UserResponse {
	return &UserResponse{
		ID:       u.ID,
		Username: u.Username,
	}
}
