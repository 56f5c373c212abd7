package utils

import "errors"

// Authentication and notification failures. Wrap with %w and match with errors.Is.
var (
	ErrAuthRequired               = errors.New("authentication required")
	ErrTokenRevoked               = errors.New("token revoked")
	ErrInvalidToken               = errors.New("invalid token")
	ErrTokenExpired               = errors.New("token expired")
	ErrAccountNotFound            = errors.New("account not found")
	ErrAccountDisabled            = errors.New("account disabled")
	ErrNotificationCreationFailed = errors.New("notification creation failed")
)
