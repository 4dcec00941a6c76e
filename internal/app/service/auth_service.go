package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/app/repository"
	"github.com/storerate/storerate-backend/internal/validation"
	"github.com/storerate/storerate-backend/pkg/logger"
	"github.com/storerate/storerate-backend/pkg/util"
	"gorm.io/gorm"
)

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	Name     string `json:"name" binding:"required,trimmed_min=20,trimmed_max=60"`
	Email    string `json:"email" binding:"required,trimmed_email"`
	Password string `json:"password" binding:"required,min=8,max=16,password_strength"`
	Address  string `json:"address" binding:"max=400"`
}

// UpdatePasswordInput carries the new password for the calling user.
type UpdatePasswordInput struct {
	Password string `json:"password" binding:"required,min=8,max=16,password_strength"`
}

// TokenRevoker records token ids that must be rejected until they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

type AuthService interface {
	Register(input RegisterInput) (*model.User, error)
	Login(email, password string) (*model.User, string, error)
	GetProfile(userID uint) (*model.User, error)
	UpdatePassword(userID uint, input UpdatePasswordInput) error
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
}

type authService struct {
	userRepo  repository.UserRepository
	revoker   TokenRevoker
	jwtSecret string
	expiry    time.Duration
}

// NewAuthService builds the service. revoker may be nil, which makes Logout
// a no-op.
func NewAuthService(userRepo repository.UserRepository, revoker TokenRevoker, jwtSecret string, expiry time.Duration) AuthService {
	return &authService{
		userRepo:  userRepo,
		revoker:   revoker,
		jwtSecret: jwtSecret,
		expiry:    expiry,
	}
}

func (s *authService) Register(input RegisterInput) (*model.User, error) {
	logger.Info("Attempting user registration", map[string]interface{}{
		"email": normalizeEmail(input.Email),
	})

	if err := validation.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	user, err := createUser(s.userRepo, input.Name, input.Email, input.Password, input.Address, model.RoleUser)
	if err != nil {
		return nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, nil
}

func (s *authService) Login(email, password string) (*model.User, string, error) {
	email = normalizeEmail(email)
	logger.Info("Attempting user login", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", ErrInvalidCredentials
	}

	token, err := util.GenerateToken(user.ID, user.Email, string(user.Role), s.jwtSecret, s.expiry)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, token, nil
}

func (s *authService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdatePassword(userID uint, input UpdatePasswordInput) error {
	if err := validation.Struct(input); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	hash, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	if err := s.userRepo.UpdatePassword(userID, hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	logger.Info("Password updated", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

func (s *authService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.revoker == nil || tokenID == "" {
		logger.Debug("Token revocation unavailable, logout is client-side only")
		return nil
	}

	if err := s.revoker.Revoke(ctx, tokenID, time.Until(expiresAt)); err != nil {
		logger.Error("Failed to revoke token", err, map[string]interface{}{
			"token_id": tokenID,
		})
		return err
	}

	logger.Info("Token revoked", map[string]interface{}{
		"token_id": tokenID,
	})
	return nil
}
