package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/alrashed/school_portal/internal/models"
)

// DefaultMessageWindow is the fixed chat window: clients poll the most
// recent messages, there is no cursor or subscription state.
const DefaultMessageWindow = 50

type ChatService struct {
	db *gorm.DB
}

func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{db: db}
}

// MessageRecord is a stored chat message joined with the author's current
// role. The author name is the snapshot taken at post time.
type MessageRecord struct {
	ID          uint      `json:"id"`
	RoomID      uint      `json:"room_id"`
	UserID      uint      `json:"user_id"`
	UserName    string    `json:"user_name"`
	UserRole    string    `json:"user_role"`
	Message     string    `json:"message"`
	MessageType string    `json:"message_type"`
	SentAt      time.Time `json:"sent_at"`
}

const messageSelect = `cm.id, cm.room_id, cm.user_id, cm.user_name, cm.message,
	cm.message_type, cm.sent_at, u.role AS user_role`

// PostMessage appends a message to the room's feed and returns the stored
// row. The body may be any string, including empty.
func (s *ChatService) PostMessage(roomID, userID uint, userName, body string) (*MessageRecord, error) {
	msg := models.ChatMessage{
		RoomID:      roomID,
		UserID:      userID,
		UserName:    userName,
		Message:     body,
		MessageType: "text",
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return nil, NewStorageError(err)
	}

	var rec MessageRecord
	err := s.db.Table("chat_messages AS cm").
		Select(messageSelect).
		Joins("JOIN users u ON u.id = cm.user_id").
		Where("cm.id = ?", msg.ID).
		Scan(&rec).Error
	if err != nil {
		return nil, NewStorageError(err)
	}
	return &rec, nil
}

// ListRecentMessages returns the most recent limit messages of the room in
// chronological order: the fetch is newest-first, then reversed, so callers
// always see oldest to newest regardless of how many messages exist.
func (s *ChatService) ListRecentMessages(roomID uint, limit int) ([]MessageRecord, error) {
	if limit <= 0 {
		limit = DefaultMessageWindow
	}

	var rows []MessageRecord
	err := s.db.Table("chat_messages AS cm").
		Select(messageSelect).
		Joins("JOIN users u ON u.id = cm.user_id").
		Where("cm.room_id = ?", roomID).
		// id breaks sent_at ties so same-second posts keep insertion order
		Order("cm.sent_at DESC, cm.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, NewStorageError(err)
	}

	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}
