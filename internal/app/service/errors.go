package service

import (
	"errors"
	"strings"
)

var (
	ErrEmailAlreadyExists = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidInput       = errors.New("invalid input")

	ErrStoreNotFound    = errors.New("store not found")
	ErrStoreEmailExists = errors.New("store with this email already exists")
	ErrInvalidOwner     = errors.New("invalid owner: user must be a store owner")
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
