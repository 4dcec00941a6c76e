package service

import (
	"errors"
	"fmt"

	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/app/repository"
	"github.com/storerate/storerate-backend/internal/validation"
	"github.com/storerate/storerate-backend/pkg/logger"
	"gorm.io/gorm"
)

// SubmitRatingInput is the rating payload. Both fields are required.
type SubmitRatingInput struct {
	StoreID uint `json:"store_id" binding:"required,min=1"`
	Rating  int  `json:"rating" binding:"required,min=1,max=5"`
}

// StoreRef identifies a store in the owner view.
type StoreRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// OwnerRatings is the store owner's view of their store.
type OwnerRatings struct {
	Store         *StoreRef                `json:"store"`
	Ratings       []repository.OwnerRating `json:"ratings"`
	AverageRating *float64                 `json:"averageRating"`
}

type RatingService interface {
	SubmitRating(userID uint, input SubmitRatingInput) (model.RatingOutcome, error)
	GetUserRatingForStore(userID, storeID uint) (*int, error)
	GetOwnerRatings(ownerID uint) (*OwnerRatings, error)
}

type ratingService struct {
	ratingRepo repository.RatingRepository
	storeRepo  repository.StoreRepository
}

func NewRatingService(ratingRepo repository.RatingRepository, storeRepo repository.StoreRepository) RatingService {
	return &ratingService{
		ratingRepo: ratingRepo,
		storeRepo:  storeRepo,
	}
}

func (s *ratingService) SubmitRating(userID uint, input SubmitRatingInput) (model.RatingOutcome, error) {
	if err := validation.Struct(input); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	exists, err := s.storeRepo.Exists(input.StoreID)
	if err != nil {
		return 0, err
	}
	if !exists {
		logger.Warn("Rating rejected: store not found", map[string]interface{}{
			"user_id":  userID,
			"store_id": input.StoreID,
		})
		return 0, ErrStoreNotFound
	}

	outcome, err := s.ratingRepo.Upsert(userID, input.StoreID, input.Rating)
	if err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			// either the store was deleted after the check or the rater's
			// account no longer exists
			stillExists, lookupErr := s.storeRepo.Exists(input.StoreID)
			if lookupErr != nil {
				return 0, lookupErr
			}
			if stillExists {
				logger.Warn("Rating rejected: user not found", map[string]interface{}{
					"user_id":  userID,
					"store_id": input.StoreID,
				})
				return 0, ErrUserNotFound
			}
			return 0, ErrStoreNotFound
		}
		return 0, err
	}

	logger.Info("Rating submitted", map[string]interface{}{
		"user_id":  userID,
		"store_id": input.StoreID,
		"rating":   input.Rating,
		"outcome":  outcome.String(),
	})
	return outcome, nil
}

// GetUserRatingForStore returns nil when the user has not rated the store.
func (s *ratingService) GetUserRatingForStore(userID, storeID uint) (*int, error) {
	rating, err := s.ratingRepo.FindByUserAndStore(userID, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rating.Rating, nil
}

func (s *ratingService) GetOwnerRatings(ownerID uint) (*OwnerRatings, error) {
	result := &OwnerRatings{Ratings: []repository.OwnerRating{}}

	store, err := s.storeRepo.FindByOwnerID(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Debug("Store owner has no store", map[string]interface{}{
				"owner_id": ownerID,
			})
			return result, nil
		}
		return nil, err
	}
	result.Store = &StoreRef{ID: store.ID, Name: store.Name}

	ratings, err := s.ratingRepo.ListForStore(store.ID)
	if err != nil {
		return nil, err
	}
	if len(ratings) > 0 {
		result.Ratings = ratings
	}

	avg, err := s.ratingRepo.AverageForStore(store.ID)
	if err != nil {
		return nil, err
	}
	result.AverageRating = avg

	return result, nil
}
