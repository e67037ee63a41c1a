package services

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"djagency-backend/config"
	"djagency-backend/logger"
	"djagency-backend/models"
	"djagency-backend/utils"
)

// SeedAdmin creates the bootstrap admin when no admin profile exists
func SeedAdmin(db *gorm.DB, cfg config.AdminConfig) error {
	var count int64
	if err := db.Model(&models.Profile{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}
	if cfg.Email == "" || cfg.Password == "" {
		logger.L().Warn("no admin profile and ADMIN_EMAIL/ADMIN_PASSWORD unset, nobody can log in")
		return nil
	}

	admin := models.Profile{
		Email:    utils.NormalizeEmail(cfg.Email),
		Password: cfg.Password,
		Name:     cfg.Name,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	logger.L().Info("admin profile seeded", zap.String("email", admin.Email))
	return nil
}

// SeedTemplates inserts the default notification templates that are missing
func SeedTemplates(db *gorm.DB) error {
	for _, tpl := range models.DefaultTemplates() {
		var existing models.NotificationTemplate
		err := db.Where("type = ?", tpl.Type).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		tpl := tpl
		if err := db.Create(&tpl).Error; err != nil {
			return fmt.Errorf("seed template %s: %w", tpl.Type, err)
		}
	}
	return nil
}
