package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lifeline/backend/internal/config"
	"github.com/lifeline/backend/internal/models"
	"github.com/lifeline/backend/pkg/logger"
	"github.com/lifeline/backend/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Donor{},
		&models.BloodRequest{},
		&models.ContactMessage{},
		&models.AuditLog{},
	)
}

// SeedAdmin inserts the default admin account if no user with the configured
// username exists yet. Safe to call on every startup.
func SeedAdmin(db *gorm.DB, cfg config.AdminConfig) error {
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", cfg.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(cfg.Password)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:     cfg.Username,
		PasswordHash: hash,
		Email:        cfg.Email,
		FullName:     "System Administrator",
		BloodGroup:   "O+",
		Role:         models.UserRoleAdmin,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logger.Info("admin_seeded", map[string]interface{}{
		"username": cfg.Username,
	})
	return nil
}

// IsDuplicateKey reports whether err is a uniqueness-constraint violation.
// Falls back to driver message matching for dialects gorm does not translate.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "duplicate key")
}
