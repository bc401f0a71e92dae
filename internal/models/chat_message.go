package models

import (
	"time"
)

type ChatMessage struct {
	ID     uint `gorm:"primaryKey"`
	RoomID uint `gorm:"index"`
	UserID uint
	// UserName is a snapshot taken when the message is posted; renaming a
	// user does not rewrite their past messages.
	UserName    string
	Message     string
	MessageType string    `gorm:"default:text"`
	SentAt      time.Time `gorm:"autoCreateTime;index"`
}
