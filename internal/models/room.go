package models

import (
	"time"
)

type Room struct {
	ID          uint `gorm:"primaryKey"`
	Name        string
	Subject     string
	Grade       string
	Section     string
	Code        string `gorm:"uniqueIndex;size:6"`
	TeacherID   uint   `gorm:"index"`
	Description string
	MaxStudents int `gorm:"default:30"`
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type RoomStudent struct {
	ID        uint      `gorm:"primaryKey"`
	RoomID    uint      `gorm:"uniqueIndex:idx_room_student"`
	StudentID uint      `gorm:"uniqueIndex:idx_room_student"`
	JoinedAt  time.Time `gorm:"autoCreateTime"`
}
