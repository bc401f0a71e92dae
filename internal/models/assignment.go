package models

import (
	"time"
)

type Assignment struct {
	ID          uint `gorm:"primaryKey"`
	Title       string
	Description string
	Subject     string
	Grade       string `gorm:"index:idx_assignment_cohort"`
	Section     string `gorm:"index:idx_assignment_cohort"`
	TeacherID   uint   `gorm:"index"`
	RoomID      *uint
	DueDate     time.Time
	TotalMarks  int
	CreatedAt   time.Time
}

const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusGraded    = "graded"
	// SubmissionStatusReturned is reserved in the schema; no operation
	// currently produces it.
	SubmissionStatusReturned = "returned"

	SubmissionStatusNotSubmitted = "not_submitted"
)

type AssignmentSubmission struct {
	ID           uint `gorm:"primaryKey"`
	AssignmentID uint `gorm:"uniqueIndex:idx_assignment_student"`
	StudentID    uint `gorm:"uniqueIndex:idx_assignment_student"`
	Solution     string
	Grade        *int
	Feedback     *string
	Status       string    `gorm:"default:submitted"`
	SubmittedAt  time.Time `gorm:"autoCreateTime"`
	GradedAt     *time.Time
}
