package database

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alrashed/school_portal/internal/config"
	"github.com/alrashed/school_portal/internal/models"
	"github.com/alrashed/school_portal/internal/utils"
)

// SeedAdmin creates the initial admin account if no admin exists yet.
func SeedAdmin(db *gorm.DB, cfg *config.Config) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username := cfg.AdminUsername
	if username == "" {
		username = "admin"
	}
	name := cfg.AdminName
	if name == "" {
		name = "Administrator"
	}
	password := cfg.AdminPassword
	if password == "" {
		password = "admin123"
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.User{
		UserID:   uuid.NewString(),
		Name:     name,
		Username: username,
		Password: hashed,
		Role:     "admin",
		Active:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Println("Seeded initial admin:", username)
	return nil
}
