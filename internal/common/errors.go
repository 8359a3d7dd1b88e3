package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")

	// Chat errors
	ErrChatNotFound    = errors.New("chat not found")
	ErrNotChatMember   = errors.New("not a member of this chat")
	ErrMessageNotFound = errors.New("message not found")

	// Friend errors
	ErrNotFriends          = errors.New("users are not friends")
	ErrFriendRequestExists = errors.New("friend request already pending")
	ErrAlreadyFriends      = errors.New("users are already friends")
	ErrRequestNotFound     = errors.New("friend request not found")

	// Auth errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)
