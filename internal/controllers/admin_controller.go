package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/alrashed/school_portal/internal/models"
)

type AdminController struct {
	DB *gorm.DB
}

type userRow struct {
	ID        uint      `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Grade     string    `json:"grade"`
	Section   string    `json:"section"`
	Subject   string    `json:"subject"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ListUsers returns every non-admin account, grouped by role then name.
func (a *AdminController) ListUsers(c *gin.Context) {
	var rows []userRow
	err := a.DB.Model(&models.User{}).
		Select("id, user_id, name, username, role, grade, section, subject, active, created_at").
		Where("role <> ?", "admin").
		Order("role, name").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetUserActive toggles an account's active flag. Deactivated users cannot
// log in and fail the auth middleware's user load.
func (a *AdminController) SetUserActive(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var user models.User
	if err := a.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if user.Role == "admin" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot deactivate an admin"})
		return
	}
	if err := a.DB.Model(&user).Update("active", *req.Active).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated", "active": *req.Active})
}

// ListStudents returns all student accounts ordered by cohort then name.
// Exposed to teachers for their student directory.
func (a *AdminController) ListStudents(c *gin.Context) {
	var rows []userRow
	err := a.DB.Model(&models.User{}).
		Select("id, user_id, name, username, role, grade, section, subject, active, created_at").
		Where("role = ?", "student").
		Order("grade, section, name").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}
