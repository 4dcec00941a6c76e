package repository

import (
	"time"

	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OwnerRating is one rating on an owner's store joined with its rater.
type OwnerRating struct {
	ID        uint      `json:"id"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
}

type RatingRepository interface {
	Upsert(userID, storeID uint, value int) (model.RatingOutcome, error)
	FindByUserAndStore(userID, storeID uint) (*model.Rating, error)
	ListForStore(storeID uint) ([]OwnerRating, error)
	AverageForStore(storeID uint) (*float64, error)
	Count() (int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Upsert writes the user's rating for a store. The insert is skipped on a
// (user_id, store_id) conflict and the existing row is updated instead, all
// inside one transaction, so concurrent submissions leave a single row.
func (r *ratingRepository) Upsert(userID, storeID uint, value int) (model.RatingOutcome, error) {
	logger.Debug("Upserting rating in database", map[string]interface{}{
		"user_id":  userID,
		"store_id": storeID,
		"rating":   value,
	})

	var outcome model.RatingOutcome
	err := r.db.Transaction(func(tx *gorm.DB) error {
		rating := &model.Rating{UserID: userID, StoreID: storeID, Rating: value}
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "store_id"}},
			DoNothing: true,
		}).Create(rating)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 1 {
			outcome = model.RatingCreated
			return nil
		}

		update := tx.Model(&model.Rating{}).
			Where("user_id = ? AND store_id = ?", userID, storeID).
			Updates(map[string]interface{}{
				"rating":     value,
				"updated_at": time.Now(),
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		outcome = model.RatingUpdated
		return nil
	})
	if err != nil {
		logger.Error("Failed to upsert rating in database", err, map[string]interface{}{
			"user_id":  userID,
			"store_id": storeID,
		})
		return 0, err
	}

	logger.Debug("Rating upserted in database", map[string]interface{}{
		"user_id":  userID,
		"store_id": storeID,
		"outcome":  outcome.String(),
	})
	return outcome, nil
}

func (r *ratingRepository) FindByUserAndStore(userID, storeID uint) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.Where("user_id = ? AND store_id = ?", userID, storeID).First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// ListForStore returns a store's ratings newest first.
func (r *ratingRepository) ListForStore(storeID uint) ([]OwnerRating, error) {
	logger.Debug("Listing ratings for store from database", map[string]interface{}{
		"store_id": storeID,
	})

	var ratings []OwnerRating
	err := r.db.Table("ratings").
		Select("ratings.id, ratings.rating, ratings.created_at, users.name AS user_name, users.email AS user_email").
		Joins("JOIN users ON users.id = ratings.user_id").
		Where("ratings.store_id = ?", storeID).
		Order("ratings.created_at DESC, ratings.id DESC").
		Scan(&ratings).Error
	if err != nil {
		logger.Error("Failed to list ratings for store from database", err, map[string]interface{}{
			"store_id": storeID,
		})
		return nil, err
	}

	logger.Debug("Ratings for store listed from database", map[string]interface{}{
		"store_id": storeID,
		"count":    len(ratings),
	})
	return ratings, nil
}

// AverageForStore returns the rounded mean rating, or nil when unrated.
func (r *ratingRepository) AverageForStore(storeID uint) (*float64, error) {
	var row struct {
		Average *float64
	}
	err := r.db.Model(&model.Rating{}).
		Select("ROUND(AVG(rating), 2) AS average").
		Where("store_id = ?", storeID).
		Scan(&row).Error
	if err != nil {
		logger.Error("Failed to compute store average rating", err, map[string]interface{}{
			"store_id": storeID,
		})
		return nil, err
	}
	return row.Average, nil
}

func (r *ratingRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Rating{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count ratings", err)
		return 0, err
	}
	return count, nil
}
