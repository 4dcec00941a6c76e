package repository

import (
	"encoding/json"
	"time"

	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/query"
	"github.com/storerate/storerate-backend/pkg/logger"
	"gorm.io/gorm"
)

// StoreSummary is a store with its rating aggregates. UserRating is only
// serialized when Personalized is set, as null for stores the viewer has not
// rated.
type StoreSummary struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	OwnerID       *uint     `json:"owner_id"`
	CreatedAt     time.Time `json:"created_at"`
	AverageRating *float64  `json:"average_rating"`
	TotalRatings  int64     `json:"total_ratings"`
	UserRating    *int      `json:"-"`
	Personalized  bool      `gorm:"-" json:"-"`
}

func (s StoreSummary) MarshalJSON() ([]byte, error) {
	type plain StoreSummary
	if !s.Personalized {
		return json.Marshal(plain(s))
	}
	return json.Marshal(struct {
		plain
		UserRating *int `json:"user_rating"`
	}{plain(s), s.UserRating})
}

// AdminStoreSummary is the admin list row.
type AdminStoreSummary struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	OwnerID       *uint     `json:"owner_id"`
	CreatedAt     time.Time `json:"created_at"`
	AverageRating *float64  `json:"average_rating"`
}

var storeSorts = map[string]string{
	"name":           "stores.name",
	"email":          "stores.email",
	"address":        "stores.address",
	"average_rating": "COALESCE(AVG(ratings.rating), 0)",
	"created_at":     "stores.created_at",
}

// StoreListSpec is the allow-list for the public store list.
var StoreListSpec = query.Spec{
	Filters: []query.Filter{
		{Param: "name", Column: "stores.name", Match: query.Contains},
		{Param: "address", Column: "stores.address", Match: query.Contains},
	},
	Sorts:       storeSorts,
	DefaultSort: "name",
	TieBreaker:  "stores.id",
}

// AdminStoreListSpec adds the email filter to the public allow-list.
var AdminStoreListSpec = query.Spec{
	Filters: []query.Filter{
		{Param: "name", Column: "stores.name", Match: query.Contains},
		{Param: "email", Column: "stores.email", Match: query.Contains},
		{Param: "address", Column: "stores.address", Match: query.Contains},
	},
	Sorts:       storeSorts,
	DefaultSort: "name",
	TieBreaker:  "stores.id",
}

const (
	storeColumns   = "stores.id, stores.name, stores.email, stores.address, stores.owner_id, stores.created_at"
	storeAggregate = "ROUND(AVG(ratings.rating), 2) AS average_rating"
	viewerRating   = "(SELECT vr.rating FROM ratings vr WHERE vr.store_id = stores.id AND vr.user_id = ?) AS user_rating"
)

type StoreRepository interface {
	Create(store *model.Store) error
	FindByID(id uint) (*model.Store, error)
	FindByOwnerID(ownerID uint) (*model.Store, error)
	ExistsByEmail(email string) (bool, error)
	Exists(id uint) (bool, error)
	Delete(id uint) error
	List(params query.Params, viewerID *uint) ([]StoreSummary, error)
	FindSummaryByID(id uint, viewerID *uint) (*StoreSummary, error)
	ListForAdmin(params query.Params) ([]AdminStoreSummary, error)
	Count() (int64, error)
}

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(store *model.Store) error {
	logger.Debug("Creating store in database", map[string]interface{}{
		"email":    store.Email,
		"owner_id": store.OwnerID,
	})

	if err := r.db.Create(store).Error; err != nil {
		logger.Error("Failed to create store in database", err, map[string]interface{}{
			"email": store.Email,
		})
		return err
	}

	logger.Debug("Store created in database", map[string]interface{}{
		"store_id": store.ID,
	})
	return nil
}

func (r *storeRepository) FindByID(id uint) (*model.Store, error) {
	var store model.Store
	if err := r.db.First(&store, id).Error; err != nil {
		logger.Error("Failed to find store by ID in database", err, map[string]interface{}{
			"store_id": id,
		})
		return nil, err
	}
	return &store, nil
}

// FindByOwnerID returns the owner's store. An owner has at most one store;
// the oldest wins if data says otherwise.
func (r *storeRepository) FindByOwnerID(ownerID uint) (*model.Store, error) {
	logger.Debug("Finding store by owner in database", map[string]interface{}{
		"owner_id": ownerID,
	})

	var store model.Store
	if err := r.db.Where("owner_id = ?", ownerID).Order("id ASC").First(&store).Error; err != nil {
		return nil, err
	}

	logger.Debug("Store found by owner in database", map[string]interface{}{
		"owner_id": ownerID,
		"store_id": store.ID,
	})
	return &store, nil
}

func (r *storeRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Store{}).Where("email = ?", email).Count(&count).Error; err != nil {
		logger.Error("Failed to check store email in database", err, map[string]interface{}{
			"email": email,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *storeRepository) Exists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Store{}).Where("id = ?", id).Count(&count).Error; err != nil {
		logger.Error("Failed to check store existence in database", err, map[string]interface{}{
			"store_id": id,
		})
		return false, err
	}
	return count > 0, nil
}

// Delete removes the store and, through the foreign key, its ratings.
// Returns gorm.ErrRecordNotFound when no row matched.
func (r *storeRepository) Delete(id uint) error {
	logger.Debug("Deleting store from database", map[string]interface{}{
		"store_id": id,
	})

	result := r.db.Delete(&model.Store{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete store from database", result.Error, map[string]interface{}{
			"store_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Store deleted from database", map[string]interface{}{
		"store_id": id,
	})
	return nil
}

func (r *storeRepository) summaryQuery(viewerID *uint) *gorm.DB {
	tx := r.db.Table("stores")
	if viewerID != nil {
		tx = tx.Select(storeColumns+", "+storeAggregate+", COUNT(ratings.id) AS total_ratings, "+viewerRating, *viewerID)
	} else {
		tx = tx.Select(storeColumns + ", " + storeAggregate + ", COUNT(ratings.id) AS total_ratings")
	}
	return tx.
		Joins("LEFT JOIN ratings ON ratings.store_id = stores.id").
		Group("stores.id")
}

func markPersonalized(stores []StoreSummary, viewerID *uint) {
	if viewerID == nil {
		return
	}
	for i := range stores {
		stores[i].Personalized = true
	}
}

func (r *storeRepository) List(params query.Params, viewerID *uint) ([]StoreSummary, error) {
	logger.Debug("Listing stores from database", map[string]interface{}{
		"filters":    params.Values,
		"sort_by":    params.SortBy,
		"sort_order": params.SortOrder,
		"viewer":     viewerID != nil,
	})

	var stores []StoreSummary
	if err := StoreListSpec.Apply(r.summaryQuery(viewerID), params).Scan(&stores).Error; err != nil {
		logger.Error("Failed to list stores from database", err)
		return nil, err
	}
	markPersonalized(stores, viewerID)

	logger.Debug("Stores listed from database", map[string]interface{}{
		"count": len(stores),
	})
	return stores, nil
}

func (r *storeRepository) FindSummaryByID(id uint, viewerID *uint) (*StoreSummary, error) {
	var stores []StoreSummary
	if err := r.summaryQuery(viewerID).Where("stores.id = ?", id).Scan(&stores).Error; err != nil {
		logger.Error("Failed to find store summary in database", err, map[string]interface{}{
			"store_id": id,
		})
		return nil, err
	}
	if len(stores) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	markPersonalized(stores, viewerID)
	return &stores[0], nil
}

func (r *storeRepository) ListForAdmin(params query.Params) ([]AdminStoreSummary, error) {
	logger.Debug("Listing stores for admin from database", map[string]interface{}{
		"filters":    params.Values,
		"sort_by":    params.SortBy,
		"sort_order": params.SortOrder,
	})

	tx := r.db.Table("stores").
		Select(storeColumns + ", " + storeAggregate).
		Joins("LEFT JOIN ratings ON ratings.store_id = stores.id").
		Group("stores.id")

	var stores []AdminStoreSummary
	if err := AdminStoreListSpec.Apply(tx, params).Scan(&stores).Error; err != nil {
		logger.Error("Failed to list stores for admin from database", err)
		return nil, err
	}
	return stores, nil
}

func (r *storeRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Store{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count stores", err)
		return 0, err
	}
	return count, nil
}
