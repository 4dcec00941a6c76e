package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/app/repository"
	"github.com/storerate/storerate-backend/internal/query"
	"github.com/storerate/storerate-backend/internal/validation"
	"github.com/storerate/storerate-backend/pkg/logger"
	"github.com/storerate/storerate-backend/pkg/util"
	"gorm.io/gorm"
)

// CreateUserInput is the admin create-user payload. Role defaults to user.
type CreateUserInput struct {
	Name     string `json:"name" binding:"required,trimmed_min=20,trimmed_max=60"`
	Email    string `json:"email" binding:"required,trimmed_email"`
	Password string `json:"password" binding:"required,min=8,max=16,password_strength"`
	Address  string `json:"address" binding:"max=400"`
	Role     string `json:"role" binding:"omitempty,user_role"`
}

type UserService interface {
	ListUsers(params query.Params) ([]repository.UserSummary, error)
	GetUser(id uint) (*repository.UserSummary, error)
	CreateUser(input CreateUserInput) (*model.User, error)
	DeleteUser(id uint) error
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) ListUsers(params query.Params) ([]repository.UserSummary, error) {
	users, err := s.userRepo.List(params)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []repository.UserSummary{}
	}
	return users, nil
}

func (s *userService) GetUser(id uint) (*repository.UserSummary, error) {
	user, err := s.userRepo.FindSummaryByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) CreateUser(input CreateUserInput) (*model.User, error) {
	if err := validation.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	role := model.RoleUser
	if input.Role != "" {
		parsed, ok := model.ParseRole(input.Role)
		if !ok {
			return nil, ErrInvalidRole
		}
		role = parsed
	}

	user, err := createUser(s.userRepo, input.Name, input.Email, input.Password, input.Address, role)
	if err != nil {
		return nil, err
	}

	logger.Info("User created by admin", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, nil
}

func (s *userService) DeleteUser(id uint) error {
	if err := s.userRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Delete requested for unknown user", map[string]interface{}{
				"user_id": id,
			})
			return ErrUserNotFound
		}
		return err
	}

	logger.Info("User deleted", map[string]interface{}{
		"user_id": id,
	})
	return nil
}

// createUser applies the uniqueness rule and hashes the password before the
// row is written. The unique index catches a concurrent duplicate.
func createUser(repo repository.UserRepository, name, email, password, address string, role model.UserRole) (*model.User, error) {
	email = normalizeEmail(email)

	exists, err := repo.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Warn("User creation rejected: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailAlreadyExists
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	user := &model.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Address:      strings.TrimSpace(address),
		Role:         role,
	}
	if err := repo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}
	return user, nil
}
