package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alrashed/school_portal/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.RoomStudent{},
		&models.ChatMessage{},
		&models.Assignment{},
		&models.AssignmentSubmission{},
	))
	return db
}

func createTeacher(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{
		UserID:   uuid.NewString(),
		Name:     name,
		Username: name,
		Password: "x",
		Role:     "teacher",
		Subject:  "Math",
		Active:   true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createStudent(t *testing.T, db *gorm.DB, name, grade, section string) models.User {
	t.Helper()
	user := models.User{
		UserID:   uuid.NewString(),
		Name:     name,
		Username: name,
		Password: "x",
		Role:     "student",
		Grade:    grade,
		Section:  section,
		Active:   true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}
