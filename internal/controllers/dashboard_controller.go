package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/alrashed/school_portal/internal/models"
)

// DashboardController aggregates count-style statistics per role. It reads
// the same tables the core writes; counts are live, nothing is cached.
type DashboardController struct {
	DB *gorm.DB
}

func (d *DashboardController) Stats(c *gin.Context) {
	user := currentUser(c)
	switch user.Role {
	case "student":
		d.studentStats(c, user)
	case "teacher":
		d.teacherStats(c, user)
	case "admin":
		d.adminStats(c)
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

func (d *DashboardController) studentStats(c *gin.Context, user models.User) {
	var roomsCount, assignmentsCount, pendingAssignments int64

	err := d.DB.Table("room_students AS rs").
		Joins("JOIN rooms r ON r.id = rs.room_id").
		Where("rs.student_id = ? AND r.active = ?", user.ID, true).
		Count(&roomsCount).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := d.DB.Model(&models.Assignment{}).
		Where("grade = ? AND section = ?", user.Grade, user.Section).
		Count(&assignmentsCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	err = d.DB.Table("assignments AS a").
		Where("a.grade = ? AND a.section = ?", user.Grade, user.Section).
		Where("NOT EXISTS (SELECT 1 FROM assignment_submissions WHERE assignment_id = a.id AND student_id = ?)", user.ID).
		Count(&pendingAssignments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rooms_count":         roomsCount,
		"assignments_count":   assignmentsCount,
		"pending_assignments": pendingAssignments,
	})
}

func (d *DashboardController) teacherStats(c *gin.Context, user models.User) {
	var roomsCount, assignmentsCount, studentsCount, pendingGrading int64

	if err := d.DB.Model(&models.Room{}).
		Where("teacher_id = ? AND active = ?", user.ID, true).
		Count(&roomsCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := d.DB.Model(&models.Assignment{}).
		Where("teacher_id = ?", user.ID).
		Count(&assignmentsCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := d.DB.Model(&models.User{}).
		Where("role = ?", "student").
		Count(&studentsCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	err := d.DB.Table("assignment_submissions AS s").
		Joins("JOIN assignments a ON a.id = s.assignment_id").
		Where("a.teacher_id = ? AND s.status = ?", user.ID, models.SubmissionStatusSubmitted).
		Count(&pendingGrading).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rooms_count":       roomsCount,
		"assignments_count": assignmentsCount,
		"students_count":    studentsCount,
		"pending_grading":   pendingGrading,
	})
}

func (d *DashboardController) adminStats(c *gin.Context) {
	var studentsCount, teachersCount, roomsCount, totalMessages int64

	if err := d.DB.Model(&models.User{}).Where("role = ?", "student").Count(&studentsCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := d.DB.Model(&models.User{}).Where("role = ?", "teacher").Count(&teachersCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := d.DB.Model(&models.Room{}).Where("active = ?", true).Count(&roomsCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := d.DB.Model(&models.ChatMessage{}).Count(&totalMessages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"students_count": studentsCount,
		"teachers_count": teachersCount,
		"rooms_count":    roomsCount,
		"total_messages": totalMessages,
	})
}

// Recent returns the latest registrations and rooms for the admin
// dashboard.
func (d *DashboardController) Recent(c *gin.Context) {
	var users []userRow
	err := d.DB.Model(&models.User{}).
		Select("id, user_id, name, username, role, grade, section, subject, active, created_at").
		Where("role <> ?", "admin").
		Order("created_at DESC").
		Limit(10).
		Scan(&users).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	type recentRoom struct {
		ID          uint      `json:"id"`
		Name        string    `json:"name"`
		Subject     string    `json:"subject"`
		Grade       string    `json:"grade"`
		Section     string    `json:"section"`
		Code        string    `json:"code"`
		TeacherName string    `json:"teacher_name"`
		Active      bool      `json:"active"`
		CreatedAt   time.Time `json:"created_at"`
	}
	var rooms []recentRoom
	err = d.DB.Table("rooms AS r").
		Select("r.id, r.name, r.subject, r.grade, r.section, r.code, u.name AS teacher_name, r.active, r.created_at").
		Joins("JOIN users u ON u.id = r.teacher_id").
		Order("r.created_at DESC").
		Limit(5).
		Scan(&rooms).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recent_users": users, "recent_rooms": rooms})
}
