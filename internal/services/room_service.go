package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/alrashed/school_portal/internal/models"
	"github.com/alrashed/school_portal/internal/utils"
)

const (
	roomCodeLength = 6
	// maxCodeAttempts bounds the retry loop on join-code collisions. The
	// code space is 36^6 so a second collision in a row is effectively a
	// broken random source, not bad luck.
	maxCodeAttempts = 5

	defaultMaxStudents = 30
)

type RoomService struct {
	db *gorm.DB

	// genCode is swappable in tests to force code collisions.
	genCode func(n int) (string, error)
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{db: db, genCode: utils.GenerateCode}
}

// RoomSummary is the room shape handed back to handlers: the room row
// joined with the owning teacher's name. MemberCount is only populated in
// the owner's view.
type RoomSummary struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Subject     string    `json:"subject"`
	Grade       string    `json:"grade"`
	Section     string    `json:"section"`
	Code        string    `json:"code"`
	TeacherID   uint      `json:"teacher_id"`
	TeacherName string    `json:"teacher_name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	MemberCount *int64    `json:"member_count,omitempty"`
}

const roomSummarySelect = `r.id, r.name, r.subject, r.grade, r.section, r.code, r.teacher_id,
	u.name AS teacher_name, r.description, r.active, r.created_at`

type CreateRoomInput struct {
	Name        string
	Subject     string
	Grade       string
	Section     string
	Description string
}

// CreateRoom persists a new room owned by teacherID with a freshly
// generated join code. A collision with an existing code is retried with a
// new code up to maxCodeAttempts times before giving up.
func (s *RoomService) CreateRoom(teacherID uint, in CreateRoomInput) (*models.Room, error) {
	if in.Name == "" || in.Subject == "" || in.Grade == "" || in.Section == "" {
		return nil, NewValidationError("name, subject, grade and section are required")
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.genCode(roomCodeLength)
		if err != nil {
			return nil, NewStorageError(err)
		}
		room := models.Room{
			Name:        in.Name,
			Subject:     in.Subject,
			Grade:       in.Grade,
			Section:     in.Section,
			Code:        code,
			TeacherID:   teacherID,
			Description: in.Description,
			MaxStudents: defaultMaxStudents,
			Active:      true,
		}
		err = s.db.Create(&room).Error
		if err == nil {
			return &room, nil
		}
		if !IsUniqueViolation(err) {
			return nil, NewStorageError(err)
		}
	}
	return nil, NewConflictError("could not allocate a unique room code")
}

// JoinRoom enrolls studentID in the active room identified by code. The
// (room, student) pair is unique in the store, so concurrent joins are
// serialized by the constraint: exactly one insert wins, the rest surface
// as a conflict.
func (s *RoomService) JoinRoom(studentID uint, code string) (*RoomSummary, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, NewValidationError("room code is required")
	}

	var room models.Room
	if err := s.db.Where("code = ? AND active = ?", code, true).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("invalid room code")
		}
		return nil, NewStorageError(err)
	}

	member := models.RoomStudent{RoomID: room.ID, StudentID: studentID}
	if err := s.db.Create(&member).Error; err != nil {
		if IsUniqueViolation(err) {
			return nil, NewConflictError("already a member of this room")
		}
		return nil, NewStorageError(err)
	}

	return s.summaryByID(room.ID)
}

func (s *RoomService) summaryByID(roomID uint) (*RoomSummary, error) {
	var row RoomSummary
	err := s.db.Table("rooms AS r").
		Select(roomSummarySelect).
		Joins("JOIN users u ON u.id = r.teacher_id").
		Where("r.id = ?", roomID).
		Scan(&row).Error
	if err != nil {
		return nil, NewStorageError(err)
	}
	if row.ID == 0 {
		return nil, NewNotFoundError("room not found")
	}
	return &row, nil
}

// ListMemberRooms returns the active rooms studentID has joined.
func (s *RoomService) ListMemberRooms(studentID uint) ([]RoomSummary, error) {
	var rows []RoomSummary
	err := s.db.Table("rooms AS r").
		Select(roomSummarySelect).
		Joins("JOIN room_students rs ON rs.room_id = r.id").
		Joins("JOIN users u ON u.id = r.teacher_id").
		Where("rs.student_id = ? AND r.active = ?", studentID, true).
		Order("r.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, NewStorageError(err)
	}
	return rows, nil
}

// ListAvailableRooms returns the active rooms for the student's cohort that
// the student has not joined yet.
func (s *RoomService) ListAvailableRooms(studentID uint, grade, section string) ([]RoomSummary, error) {
	joined := s.db.Table("room_students").Select("room_id").Where("student_id = ?", studentID)

	var rows []RoomSummary
	err := s.db.Table("rooms AS r").
		Select(roomSummarySelect).
		Joins("JOIN users u ON u.id = r.teacher_id").
		Where("r.grade = ? AND r.section = ? AND r.active = ?", grade, section, true).
		Where("r.id NOT IN (?)", joined).
		Order("r.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, NewStorageError(err)
	}
	return rows, nil
}

// ListOwnedRooms returns every room created by teacherID, active or not,
// annotated with its current member count.
func (s *RoomService) ListOwnedRooms(teacherID uint) ([]RoomSummary, error) {
	var rows []RoomSummary
	err := s.db.Table("rooms AS r").
		Select(roomSummarySelect+`,
			(SELECT COUNT(*) FROM room_students WHERE room_id = r.id) AS member_count`).
		Joins("JOIN users u ON u.id = r.teacher_id").
		Where("r.teacher_id = ?", teacherID).
		Order("r.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, NewStorageError(err)
	}
	return rows, nil
}

// AuthorizeMember resolves the active room roomID if studentID holds a
// membership in it. Must pass before a student reads or posts to the
// room's chat.
func (s *RoomService) AuthorizeMember(roomID, studentID uint) (*models.Room, error) {
	var room models.Room
	err := s.db.
		Joins("JOIN room_students rs ON rs.room_id = rooms.id AND rs.student_id = ?", studentID).
		Where("rooms.id = ? AND rooms.active = ?", roomID, true).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotAuthorizedError("not a member of this room")
		}
		return nil, NewStorageError(err)
	}
	return &room, nil
}

// AuthorizeOwner resolves the active room roomID if teacherID owns it.
func (s *RoomService) AuthorizeOwner(roomID, teacherID uint) (*models.Room, error) {
	var room models.Room
	err := s.db.
		Where("id = ? AND teacher_id = ? AND active = ?", roomID, teacherID, true).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotAuthorizedError("not the owner of this room")
		}
		return nil, NewStorageError(err)
	}
	return &room, nil
}

// RoomMember is a roster entry for the owner's view of a room.
type RoomMember struct {
	ID       uint      `json:"id"`
	Name     string    `json:"name"`
	Grade    string    `json:"grade"`
	Section  string    `json:"section"`
	JoinedAt time.Time `json:"joined_at"`
}

// ListMembers returns the active students enrolled in roomID.
func (s *RoomService) ListMembers(roomID uint) ([]RoomMember, error) {
	var rows []RoomMember
	err := s.db.Table("users AS u").
		Select("u.id, u.name, u.grade, u.section, rs.joined_at").
		Joins("JOIN room_students rs ON rs.student_id = u.id").
		Where("rs.room_id = ? AND u.active = ?", roomID, true).
		Order("u.name").
		Scan(&rows).Error
	if err != nil {
		return nil, NewStorageError(err)
	}
	return rows, nil
}
