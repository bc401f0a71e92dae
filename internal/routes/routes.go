package routes

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/alrashed/school_portal/internal/config"
	"github.com/alrashed/school_portal/internal/controllers"
	"github.com/alrashed/school_portal/internal/middleware"
	"github.com/alrashed/school_portal/internal/services"
)

func Register(r *gin.Engine, db *gorm.DB, cfg *config.Config) {
	accessTTL := parseMinutes(cfg.AccessTokenTTLMinutes, 60*time.Minute)
	refreshTTL := parseDays(cfg.RefreshTokenTTLDays, 30*24*time.Hour)

	roomSvc := services.NewRoomService(db)
	chatSvc := services.NewChatService(db)
	assignmentSvc := services.NewAssignmentService(db)

	authCtrl := &controllers.AuthController{
		DB:            db,
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.RefreshJWTSecret,
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	}
	roomCtrl := &controllers.RoomController{Rooms: roomSvc}
	chatCtrl := &controllers.ChatController{Rooms: roomSvc, Chat: chatSvc}
	assignmentCtrl := &controllers.AssignmentController{Assignments: assignmentSvc}
	adminCtrl := &controllers.AdminController{DB: db}
	dashCtrl := &controllers.DashboardController{DB: db}

	// Public
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/register", authCtrl.Register)
		auth.POST("/login", authCtrl.Login)
		auth.POST("/refresh", authCtrl.Refresh)
	}

	// Protected
	authMW := middleware.AuthMiddleware(db, middleware.AuthConfig{
		JWTSecret:    cfg.JWTSecret,
		JWTExpiresIn: accessTTL,
	})
	api := r.Group("/api/v1", authMW)
	{
		api.GET("/auth/me", authCtrl.Me)
		api.POST("/auth/logout", authCtrl.Logout)

		api.GET("/dashboard", dashCtrl.Stats)

		// Chat: member-gated for students, owner-gated for teachers
		api.GET("/rooms/:id/messages", chatCtrl.GetMessages)
		api.POST("/rooms/:id/messages", chatCtrl.PostMessage)

		student := api.Group("/student", middleware.RequireRoles("student"))
		{
			student.GET("/rooms", roomCtrl.ListJoined)
			student.GET("/rooms/available", roomCtrl.ListAvailable)
			student.POST("/rooms/join", roomCtrl.Join)
			student.GET("/assignments", assignmentCtrl.ListCohort)
			student.POST("/assignments/:id/submit", assignmentCtrl.Submit)
		}

		teacher := api.Group("/teacher", middleware.RequireRoles("teacher"))
		{
			teacher.GET("/rooms", roomCtrl.ListOwned)
			teacher.POST("/rooms", roomCtrl.Create)
			teacher.GET("/rooms/:id/members", roomCtrl.Members)
			teacher.GET("/assignments", assignmentCtrl.ListOwned)
			teacher.POST("/assignments", assignmentCtrl.Create)
			teacher.GET("/assignments/:id/submissions", assignmentCtrl.Submissions)
			teacher.POST("/submissions/:id/grade", assignmentCtrl.Grade)
			teacher.GET("/students", adminCtrl.ListStudents)
		}

		admin := api.Group("/admin", middleware.RequireRoles("admin"))
		{
			admin.GET("/users", adminCtrl.ListUsers)
			admin.PUT("/users/:id/active", adminCtrl.SetUserActive)
			admin.GET("/recent", dashCtrl.Recent)
		}
	}
}

func parseMinutes(v string, fallback time.Duration) time.Duration {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Minute
}

func parseDays(v string, fallback time.Duration) time.Duration {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * 24 * time.Hour
}
