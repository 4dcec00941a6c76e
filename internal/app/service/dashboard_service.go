package service

import (
	"github.com/storerate/storerate-backend/internal/app/repository"
	"github.com/storerate/storerate-backend/pkg/logger"
)

type Stats struct {
	TotalUsers   int64 `json:"totalUsers"`
	TotalStores  int64 `json:"totalStores"`
	TotalRatings int64 `json:"totalRatings"`
}

type DashboardService interface {
	GetStats() (*Stats, error)
}

type dashboardService struct {
	userRepo   repository.UserRepository
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
}

func NewDashboardService(userRepo repository.UserRepository, storeRepo repository.StoreRepository, ratingRepo repository.RatingRepository) DashboardService {
	return &dashboardService{
		userRepo:   userRepo,
		storeRepo:  storeRepo,
		ratingRepo: ratingRepo,
	}
}

func (s *dashboardService) GetStats() (*Stats, error) {
	users, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}
	stores, err := s.storeRepo.Count()
	if err != nil {
		return nil, err
	}
	ratings, err := s.ratingRepo.Count()
	if err != nil {
		return nil, err
	}

	logger.Debug("Dashboard stats computed", map[string]interface{}{
		"users":   users,
		"stores":  stores,
		"ratings": ratings,
	})
	return &Stats{TotalUsers: users, TotalStores: stores, TotalRatings: ratings}, nil
}
