package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/alrashed/school_portal/internal/models"
)

type AssignmentService struct {
	db *gorm.DB
}

func NewAssignmentService(db *gorm.DB) *AssignmentService {
	return &AssignmentService{db: db}
}

type CreateAssignmentInput struct {
	Title       string
	Description string
	Subject     string
	Grade       string
	Section     string
	DueDate     string // YYYY-MM-DD
	TotalMarks  int
}

// CreateAssignment persists a new assignment owned by teacherID, targeted
// at the (grade, section) cohort.
func (s *AssignmentService) CreateAssignment(teacherID uint, in CreateAssignmentInput) (*models.Assignment, error) {
	if in.Title == "" || in.Description == "" || in.Subject == "" || in.Grade == "" || in.Section == "" {
		return nil, NewValidationError("title, description, subject, grade and section are required")
	}
	due, err := time.Parse("2006-01-02", in.DueDate)
	if err != nil {
		return nil, NewValidationError("due_date must be a valid date (YYYY-MM-DD)")
	}
	if in.TotalMarks <= 0 {
		return nil, NewValidationError("total_marks must be a positive integer")
	}

	assignment := models.Assignment{
		Title:       in.Title,
		Description: in.Description,
		Subject:     in.Subject,
		Grade:       in.Grade,
		Section:     in.Section,
		TeacherID:   teacherID,
		DueDate:     due,
		TotalMarks:  in.TotalMarks,
	}
	if err := s.db.Create(&assignment).Error; err != nil {
		return nil, NewStorageError(err)
	}
	return &assignment, nil
}

// CohortAssignment is an assignment as a student sees it: joined with the
// teacher's name and annotated with that student's submission state.
type CohortAssignment struct {
	ID               uint      `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Subject          string    `json:"subject"`
	Grade            string    `json:"grade"`
	Section          string    `json:"section"`
	DueDate          time.Time `json:"due_date"`
	TotalMarks       int       `json:"total_marks"`
	TeacherName      string    `json:"teacher_name"`
	SubmissionStatus string    `json:"submission_status"`
	SubmissionGrade  *int      `json:"submission_grade"`
	Feedback         *string   `json:"feedback"`
}

// ListForCohort returns the assignments targeting (grade, section) in due
// date order, each annotated with studentID's submission status. A single
// left join resolves every status at once.
func (s *AssignmentService) ListForCohort(studentID uint, grade, section string) ([]CohortAssignment, error) {
	var rows []CohortAssignment
	err := s.db.Table("assignments AS a").
		Select(`a.id, a.title, a.description, a.subject, a.grade, a.section, a.due_date, a.total_marks,
			u.name AS teacher_name,
			COALESCE(s.status, ?) AS submission_status,
			s.grade AS submission_grade, s.feedback`, models.SubmissionStatusNotSubmitted).
		Joins("JOIN users u ON u.id = a.teacher_id").
		Joins("LEFT JOIN assignment_submissions s ON s.assignment_id = a.id AND s.student_id = ?", studentID).
		Where("a.grade = ? AND a.section = ?", grade, section).
		Order("a.due_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, NewStorageError(err)
	}
	return rows, nil
}

// OwnedAssignment is an assignment as its teacher sees it, annotated with
// submission progress.
type OwnedAssignment struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Subject         string    `json:"subject"`
	Grade           string    `json:"grade"`
	Section         string    `json:"section"`
	DueDate         time.Time `json:"due_date"`
	TotalMarks      int       `json:"total_marks"`
	CreatedAt       time.Time `json:"created_at"`
	SubmissionCount int64     `json:"submission_count"`
	GradedCount     int64     `json:"graded_count"`
}

// ListOwned returns every assignment created by teacherID, newest first.
func (s *AssignmentService) ListOwned(teacherID uint) ([]OwnedAssignment, error) {
	var rows []OwnedAssignment
	err := s.db.Table("assignments AS a").
		Select(`a.id, a.title, a.description, a.subject, a.grade, a.section, a.due_date, a.total_marks, a.created_at,
			(SELECT COUNT(*) FROM assignment_submissions WHERE assignment_id = a.id) AS submission_count,
			(SELECT COUNT(*) FROM assignment_submissions WHERE assignment_id = a.id AND status = ?) AS graded_count`,
			models.SubmissionStatusGraded).
		Where("a.teacher_id = ?", teacherID).
		Order("a.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, NewStorageError(err)
	}
	return rows, nil
}

// GetOwned resolves an assignment only for its owning teacher.
func (s *AssignmentService) GetOwned(assignmentID, teacherID uint) (*models.Assignment, error) {
	var assignment models.Assignment
	err := s.db.Where("id = ? AND teacher_id = ?", assignmentID, teacherID).First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotAuthorizedError("not the owner of this assignment")
		}
		return nil, NewStorageError(err)
	}
	return &assignment, nil
}

// Submit records studentID's one-shot solution for an assignment. The
// (assignment, student) pair is unique in the store; a second submission,
// concurrent or not, surfaces as a conflict. There is no update path.
func (s *AssignmentService) Submit(assignmentID, studentID uint, solution string) (*models.AssignmentSubmission, error) {
	if strings.TrimSpace(solution) == "" {
		return nil, NewValidationError("solution is required")
	}

	var assignment models.Assignment
	if err := s.db.First(&assignment, assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("assignment not found")
		}
		return nil, NewStorageError(err)
	}

	sub := models.AssignmentSubmission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Solution:     solution,
		Status:       models.SubmissionStatusSubmitted,
	}
	if err := s.db.Create(&sub).Error; err != nil {
		if IsUniqueViolation(err) {
			return nil, NewConflictError("assignment already submitted")
		}
		return nil, NewStorageError(err)
	}
	return &sub, nil
}

// SubmissionRecord is a submission joined with the submitting student.
type SubmissionRecord struct {
	ID             uint       `json:"id"`
	AssignmentID   uint       `json:"assignment_id"`
	StudentID      uint       `json:"student_id"`
	StudentName    string     `json:"student_name"`
	StudentGrade   string     `json:"student_grade"`
	StudentSection string     `json:"student_section"`
	Solution       string     `json:"solution"`
	Grade          *int       `json:"grade"`
	Feedback       *string    `json:"feedback"`
	Status         string     `json:"status"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	GradedAt       *time.Time `json:"graded_at"`
}

// ListSubmissions returns all submissions for an assignment, newest first.
// Only the owning teacher may call it.
func (s *AssignmentService) ListSubmissions(assignmentID, teacherID uint) ([]SubmissionRecord, error) {
	if _, err := s.GetOwned(assignmentID, teacherID); err != nil {
		return nil, err
	}

	var rows []SubmissionRecord
	err := s.db.Table("assignment_submissions AS s").
		Select(`s.id, s.assignment_id, s.student_id, u.name AS student_name,
			u.grade AS student_grade, u.section AS student_section,
			s.solution, s.grade, s.feedback, s.status, s.submitted_at, s.graded_at`).
		Joins("JOIN users u ON u.id = s.student_id").
		Where("s.assignment_id = ?", assignmentID).
		Order("s.submitted_at DESC, s.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, NewStorageError(err)
	}
	return rows, nil
}

// GradeSubmission sets grade, feedback and the graded timestamp on a
// submission and moves it to the graded status. Only the teacher owning the
// submission's assignment may grade it. Grading an already graded
// submission simply overwrites the previous grade.
func (s *AssignmentService) GradeSubmission(submissionID, teacherID uint, gradeValue int, feedback string) (*models.AssignmentSubmission, error) {
	var sub models.AssignmentSubmission
	if err := s.db.First(&sub, submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("submission not found")
		}
		return nil, NewStorageError(err)
	}

	var assignment models.Assignment
	if err := s.db.First(&assignment, sub.AssignmentID).Error; err != nil {
		return nil, NewStorageError(err)
	}
	if assignment.TeacherID != teacherID {
		return nil, NewNotAuthorizedError("not the owner of this submission's assignment")
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"grade":     gradeValue,
		"feedback":  feedback,
		"status":    models.SubmissionStatusGraded,
		"graded_at": &now,
	}
	if err := s.db.Model(&sub).Updates(updates).Error; err != nil {
		return nil, NewStorageError(err)
	}

	if err := s.db.First(&sub, submissionID).Error; err != nil {
		return nil, NewStorageError(err)
	}
	return &sub, nil
}
