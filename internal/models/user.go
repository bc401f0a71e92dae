package models

import (
	"time"
)

type User struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"uniqueIndex"`
	Name      string
	Username  string `gorm:"uniqueIndex"`
	Password  string
	Role      string // student, teacher or admin
	Grade     string
	Section   string
	Subject   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
