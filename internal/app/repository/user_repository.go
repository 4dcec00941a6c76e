package repository

import (
	"time"

	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/query"
	"github.com/storerate/storerate-backend/pkg/logger"
	"gorm.io/gorm"
)

// UserSummary is a user row as returned by list and detail endpoints.
// Rating is the average across the user's stores and is only set for
// store owners.
type UserSummary struct {
	ID        uint           `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Address   string         `json:"address"`
	Role      model.UserRole `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	Rating    *float64       `json:"rating"`
}

// UserListSpec is the allow-list for user list queries.
var UserListSpec = query.Spec{
	Filters: []query.Filter{
		{Param: "name", Column: "users.name", Match: query.Contains},
		{Param: "email", Column: "users.email", Match: query.Contains},
		{Param: "address", Column: "users.address", Match: query.Contains},
		{Param: "role", Column: "users.role", Match: query.Exact},
	},
	Sorts: map[string]string{
		"name":       "users.name",
		"email":      "users.email",
		"address":    "users.address",
		"role":       "users.role",
		"created_at": "users.created_at",
	},
	DefaultSort: "name",
	TieBreaker:  "users.id",
}

const userSummarySelect = `users.id, users.name, users.email, users.address, users.role, users.created_at,
	CASE WHEN users.role = ? THEN ROUND(AVG(ratings.rating), 2) ELSE NULL END AS rating`

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	ExistsByEmail(email string) (bool, error)
	UpdatePassword(id uint, passwordHash string) error
	Delete(id uint) error
	List(params query.Params) ([]UserSummary, error)
	FindSummaryByID(id uint) (*UserSummary, error)
	Count() (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email": user.Email,
		"role":  user.Role,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	logger.Debug("Finding user by ID in database", map[string]interface{}{
		"user_id": id,
	})

	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		logger.Error("Failed to find user by ID in database", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}

	logger.Debug("User found by ID in database", map[string]interface{}{
		"user_id": user.ID,
	})
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	logger.Debug("Finding user by email in database", map[string]interface{}{
		"email": email,
	})

	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		logger.Error("Failed to find user by email in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	logger.Debug("User found by email in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return &user, nil
}

func (r *userRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		logger.Error("Failed to check user email in database", err, map[string]interface{}{
			"email": email,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) UpdatePassword(id uint, passwordHash string) error {
	logger.Debug("Updating user password in database", map[string]interface{}{
		"user_id": id,
	})

	result := r.db.Model(&model.User{}).Where("id = ?", id).Update("password", passwordHash)
	if result.Error != nil {
		logger.Error("Failed to update user password in database", result.Error, map[string]interface{}{
			"user_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("User password updated in database", map[string]interface{}{
		"user_id": id,
	})
	return nil
}

// Delete removes the user. Owned stores lose their owner and the user's
// ratings are removed by the foreign keys. Returns gorm.ErrRecordNotFound
// when no row matched.
func (r *userRepository) Delete(id uint) error {
	logger.Debug("Deleting user from database", map[string]interface{}{
		"user_id": id,
	})

	result := r.db.Delete(&model.User{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete user from database", result.Error, map[string]interface{}{
			"user_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		logger.Debug("No user row deleted", map[string]interface{}{
			"user_id": id,
		})
		return gorm.ErrRecordNotFound
	}

	logger.Debug("User deleted from database", map[string]interface{}{
		"user_id": id,
	})
	return nil
}

func (r *userRepository) summaryQuery() *gorm.DB {
	return r.db.Table("users").
		Select(userSummarySelect, model.RoleStoreOwner).
		Joins("LEFT JOIN stores ON stores.owner_id = users.id").
		Joins("LEFT JOIN ratings ON ratings.store_id = stores.id").
		Group("users.id")
}

func (r *userRepository) List(params query.Params) ([]UserSummary, error) {
	logger.Debug("Listing users from database", map[string]interface{}{
		"filters":    params.Values,
		"sort_by":    params.SortBy,
		"sort_order": params.SortOrder,
	})

	var users []UserSummary
	if err := UserListSpec.Apply(r.summaryQuery(), params).Scan(&users).Error; err != nil {
		logger.Error("Failed to list users from database", err)
		return nil, err
	}

	logger.Debug("Users listed from database", map[string]interface{}{
		"count": len(users),
	})
	return users, nil
}

func (r *userRepository) FindSummaryByID(id uint) (*UserSummary, error) {
	logger.Debug("Finding user summary in database", map[string]interface{}{
		"user_id": id,
	})

	var users []UserSummary
	if err := r.summaryQuery().Where("users.id = ?", id).Scan(&users).Error; err != nil {
		logger.Error("Failed to find user summary in database", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	if len(users) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &users[0], nil
}

func (r *userRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.User{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count users", err)
		return 0, err
	}
	return count, nil
}
