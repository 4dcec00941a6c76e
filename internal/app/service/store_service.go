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
	"gorm.io/gorm"
)

// CreateStoreInput is the admin create-store payload.
type CreateStoreInput struct {
	Name    string `json:"name" binding:"required,trimmed_min=20,trimmed_max=60"`
	Email   string `json:"email" binding:"required,trimmed_email"`
	Address string `json:"address" binding:"max=400"`
	OwnerID *uint  `json:"owner_id"` // 0 means no owner
}

type StoreService interface {
	ListStores(params query.Params, viewerID *uint) ([]repository.StoreSummary, error)
	GetStore(id uint, viewerID *uint) (*repository.StoreSummary, error)
	CreateStore(input CreateStoreInput) (*model.Store, error)
	DeleteStore(id uint) error
	ListStoresForAdmin(params query.Params) ([]repository.AdminStoreSummary, error)
}

type storeService struct {
	storeRepo repository.StoreRepository
	userRepo  repository.UserRepository
}

func NewStoreService(storeRepo repository.StoreRepository, userRepo repository.UserRepository) StoreService {
	return &storeService{
		storeRepo: storeRepo,
		userRepo:  userRepo,
	}
}

func (s *storeService) ListStores(params query.Params, viewerID *uint) ([]repository.StoreSummary, error) {
	stores, err := s.storeRepo.List(params, viewerID)
	if err != nil {
		return nil, err
	}
	if stores == nil {
		stores = []repository.StoreSummary{}
	}
	return stores, nil
}

func (s *storeService) GetStore(id uint, viewerID *uint) (*repository.StoreSummary, error) {
	store, err := s.storeRepo.FindSummaryByID(id, viewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return store, nil
}

func (s *storeService) CreateStore(input CreateStoreInput) (*model.Store, error) {
	if input.OwnerID != nil && *input.OwnerID == 0 {
		input.OwnerID = nil
	}
	if err := validation.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	email := normalizeEmail(input.Email)
	logger.Info("Attempting store creation", map[string]interface{}{
		"email":    email,
		"owner_id": input.OwnerID,
	})

	exists, err := s.storeRepo.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Warn("Store creation rejected: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrStoreEmailExists
	}

	if input.OwnerID != nil {
		owner, err := s.userRepo.FindByID(*input.OwnerID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if owner == nil || owner.Role != model.RoleStoreOwner {
			logger.Warn("Store creation rejected: invalid owner", map[string]interface{}{
				"owner_id": *input.OwnerID,
			})
			return nil, ErrInvalidOwner
		}
	}

	store := &model.Store{
		Name:    strings.TrimSpace(input.Name),
		Email:   email,
		Address: strings.TrimSpace(input.Address),
		OwnerID: input.OwnerID,
	}
	if err := s.storeRepo.Create(store); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrStoreEmailExists
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			// owner deleted after the check above
			return nil, ErrInvalidOwner
		}
		return nil, err
	}

	logger.Info("Store created", map[string]interface{}{
		"store_id": store.ID,
		"owner_id": store.OwnerID,
	})
	return store, nil
}

func (s *storeService) DeleteStore(id uint) error {
	if err := s.storeRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Delete requested for unknown store", map[string]interface{}{
				"store_id": id,
			})
			return ErrStoreNotFound
		}
		return err
	}

	logger.Info("Store deleted", map[string]interface{}{
		"store_id": id,
	})
	return nil
}

func (s *storeService) ListStoresForAdmin(params query.Params) ([]repository.AdminStoreSummary, error) {
	stores, err := s.storeRepo.ListForAdmin(params)
	if err != nil {
		return nil, err
	}
	if stores == nil {
		stores = []repository.AdminStoreSummary{}
	}
	return stores, nil
}
