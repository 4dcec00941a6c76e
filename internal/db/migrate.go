package db

import (
	"errors"
	"strings"

	"github.com/storerate/storerate-backend/config"
	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/pkg/logger"
	"github.com/storerate/storerate-backend/pkg/util"
	"gorm.io/gorm"
)

// Models returns every table the application owns, parents first.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Store{},
		&model.Rating{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB runs AutoMigrate against an explicit handle.
func MigrateDB(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// EnsureAdmin creates the bootstrap administrator when one is configured and
// no user with that email exists yet. It returns true when a row was created.
func EnsureAdmin(db *gorm.DB, cfg config.AdminConfig) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(cfg.Email))
	if email == "" || cfg.Password == "" {
		logger.Debug("Bootstrap admin not configured, skipping")
		return false, nil
	}

	var existing model.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		logger.Info("Bootstrap admin already exists, skipping", map[string]interface{}{
			"user_id": existing.ID,
			"role":    existing.Role,
		})
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to look up bootstrap admin", err)
		return false, err
	}

	hash, err := util.HashPassword(cfg.Password)
	if err != nil {
		logger.Error("Failed to hash bootstrap admin password", err)
		return false, err
	}

	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = "System Administrator Account"
	}

	admin := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Address:      strings.TrimSpace(cfg.Address),
		Role:         model.RoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		logger.Error("Failed to create bootstrap admin", err)
		return false, err
	}

	logger.Info("Bootstrap admin created", map[string]interface{}{
		"user_id": admin.ID,
		"email":   admin.Email,
	})
	return true, nil
}
