package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alrashed/school_portal/internal/services"
)

type AssignmentController struct {
	Assignments *services.AssignmentService
}

type createAssignmentRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Subject     string `json:"subject" binding:"required"`
	Grade       string `json:"grade" binding:"required"`
	Section     string `json:"section" binding:"required"`
	DueDate     string `json:"due_date" binding:"required"`
	TotalMarks  int    `json:"total_marks" binding:"required"`
}

type submitRequest struct {
	Solution string `json:"solution" binding:"required"`
}

type gradeRequest struct {
	Grade    *int   `json:"grade" binding:"required"`
	Feedback string `json:"feedback"`
}

// Create adds an assignment owned by the calling teacher, targeted at a
// (grade, section) cohort.
func (ac *AssignmentController) Create(c *gin.Context) {
	var req createAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user := currentUser(c)
	assignment, err := ac.Assignments.CreateAssignment(user.ID, services.CreateAssignmentInput{
		Title:       req.Title,
		Description: req.Description,
		Subject:     req.Subject,
		Grade:       req.Grade,
		Section:     req.Section,
		DueDate:     req.DueDate,
		TotalMarks:  req.TotalMarks,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "created", "id": assignment.ID})
}

// ListCohort returns the calling student's assignments with their
// submission status.
func (ac *AssignmentController) ListCohort(c *gin.Context) {
	user := currentUser(c)
	assignments, err := ac.Assignments.ListForCohort(user.ID, user.Grade, user.Section)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": assignments})
}

// ListOwned returns the calling teacher's assignments with submission
// progress counts.
func (ac *AssignmentController) ListOwned(c *gin.Context) {
	user := currentUser(c)
	assignments, err := ac.Assignments.ListOwned(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": assignments})
}

// Submit records the calling student's solution for an assignment.
func (ac *AssignmentController) Submit(c *gin.Context) {
	assignmentID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user := currentUser(c)
	sub, err := ac.Assignments.Submit(assignmentID, user.ID, req.Solution)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "submitted", "id": sub.ID})
}

// Submissions returns all submissions for an assignment the calling
// teacher owns, together with the assignment itself.
func (ac *AssignmentController) Submissions(c *gin.Context) {
	assignmentID, ok := idParam(c, "id")
	if !ok {
		return
	}
	user := currentUser(c)
	assignment, err := ac.Assignments.GetOwned(assignmentID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	subs, err := ac.Assignments.ListSubmissions(assignmentID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignment": assignment, "data": subs})
}

// Grade sets grade and feedback on a submission of an assignment the
// calling teacher owns.
func (ac *AssignmentController) Grade(c *gin.Context) {
	submissionID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req gradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user := currentUser(c)
	sub, err := ac.Assignments.GradeSubmission(submissionID, user.ID, *req.Grade, req.Feedback)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "graded", "status": sub.Status, "grade": sub.Grade})
}

func idParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
