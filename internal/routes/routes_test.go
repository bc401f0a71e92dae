package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alrashed/school_portal/internal/config"
	"github.com/alrashed/school_portal/internal/database"
)

func setupServer(t *testing.T) (*gin.Engine, *gorm.DB, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:             "test-secret",
		RefreshJWTSecret:      "test-refresh-secret",
		AccessTokenTTLMinutes: "60",
		RefreshTokenTTLDays:   "30",
		AdminUsername:         "admin",
		AdminPassword:         "admin123",
		AdminName:             "Administrator",
	}
	require.NoError(t, database.SeedAdmin(db, cfg))

	r := gin.New()
	Register(r, db, cfg)
	return r, db, cfg
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func register(t *testing.T, r *gin.Engine, name, username, role, grade, section string) {
	t.Helper()
	rr := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": name, "username": username, "password": "secret123",
		"role": role, "grade": grade, "section": section,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func login(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()
	rr := doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": username, "password": password,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	token, _ := decode(t, rr)["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAuthFlow(t *testing.T) {
	r, _, _ := setupServer(t)

	register(t, r, "Sara", "sara", "student", "10", "A")

	// duplicate username
	rr := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "Other", "username": "sara", "password": "secret123", "role": "student",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)

	// self-registration cannot mint admins
	rr = doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "Evil", "username": "evil", "password": "secret123", "role": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "sara", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	token := login(t, r, "sara", "secret123")

	rr = doJSON(t, r, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	me := decode(t, rr)
	assert.Equal(t, "sara", me["username"])
	assert.Equal(t, "student", me["role"])

	rr = doJSON(t, r, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doJSON(t, r, http.MethodGet, "/api/v1/auth/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRoleGates(t *testing.T) {
	r, _, _ := setupServer(t)
	register(t, r, "Sara", "sara", "student", "10", "A")
	studentToken := login(t, r, "sara", "secret123")

	rr := doJSON(t, r, http.MethodPost, "/api/v1/teacher/rooms", studentToken, gin.H{
		"name": "Math101", "subject": "Math", "grade": "10", "section": "A",
	})
	assert.Equal(t, http.StatusForbidden, rr.Code, "students must not create rooms")

	rr = doJSON(t, r, http.MethodGet, "/api/v1/admin/users", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

// The full portal scenario: teacher creates a room and an assignment, a
// student joins, chats, submits, and the teacher grades.
func TestPortalScenario(t *testing.T) {
	r, _, _ := setupServer(t)

	register(t, r, "Mr. Taleb", "taleb", "teacher", "", "")
	register(t, r, "Sara", "sara", "student", "10", "A")
	teacherToken := login(t, r, "taleb", "secret123")
	studentToken := login(t, r, "sara", "secret123")

	// teacher creates a room for grade 10 / section A
	rr := doJSON(t, r, http.MethodPost, "/api/v1/teacher/rooms", teacherToken, gin.H{
		"name": "Math101", "subject": "Math", "grade": "10", "section": "A",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode(t, rr)
	code, _ := created["code"].(string)
	require.Len(t, code, 6)
	roomID := int(created["id"].(float64))

	// the room is visible to the student as available
	rr = doJSON(t, r, http.MethodGet, "/api/v1/student/rooms/available", studentToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode(t, rr)["data"], 1)

	// student joins by code, once
	rr = doJSON(t, r, http.MethodPost, "/api/v1/student/rooms/join", studentToken, gin.H{"code": code})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = doJSON(t, r, http.MethodPost, "/api/v1/student/rooms/join", studentToken, gin.H{"code": code})
	assert.Equal(t, http.StatusConflict, rr.Code)
	rr = doJSON(t, r, http.MethodPost, "/api/v1/student/rooms/join", studentToken, gin.H{"code": "NOSUCH"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// chat: both sides post, feed comes back chronological
	msgURL := fmt.Sprintf("/api/v1/rooms/%d/messages", roomID)
	rr = doJSON(t, r, http.MethodPost, msgURL, studentToken, gin.H{"message": "hello"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = doJSON(t, r, http.MethodPost, msgURL, teacherToken, gin.H{"message": "welcome"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, r, http.MethodGet, msgURL, studentToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	feed := decode(t, rr)["data"].([]interface{})
	require.Len(t, feed, 2)
	first := feed[0].(map[string]interface{})
	assert.Equal(t, "hello", first["message"])
	assert.Equal(t, "student", first["user_role"])

	// a non-member student is rejected
	register(t, r, "Omar", "omar", "student", "10", "A")
	outsiderToken := login(t, r, "omar", "secret123")
	rr = doJSON(t, r, http.MethodGet, msgURL, outsiderToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// teacher creates HW1 for the cohort
	rr = doJSON(t, r, http.MethodPost, "/api/v1/teacher/assignments", teacherToken, gin.H{
		"title": "HW1", "description": "Solve all", "subject": "Math",
		"grade": "10", "section": "A", "due_date": "2024-06-01", "total_marks": 100,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assignmentID := int(decode(t, rr)["id"].(float64))

	// student sees it as not submitted, then submits exactly once
	rr = doJSON(t, r, http.MethodGet, "/api/v1/student/assignments", studentToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	cohort := decode(t, rr)["data"].([]interface{})
	require.Len(t, cohort, 1)
	assert.Equal(t, "not_submitted", cohort[0].(map[string]interface{})["submission_status"])

	submitURL := fmt.Sprintf("/api/v1/student/assignments/%d/submit", assignmentID)
	rr = doJSON(t, r, http.MethodPost, submitURL, studentToken, gin.H{"solution": "my answer"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	submissionID := int(decode(t, rr)["id"].(float64))
	rr = doJSON(t, r, http.MethodPost, submitURL, studentToken, gin.H{"solution": "retry"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	// teacher reviews and grades
	rr = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/teacher/assignments/%d/submissions", assignmentID), teacherToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	subs := decode(t, rr)["data"].([]interface{})
	require.Len(t, subs, 1)

	gradeURL := fmt.Sprintf("/api/v1/teacher/submissions/%d/grade", submissionID)
	rr = doJSON(t, r, http.MethodPost, gradeURL, teacherToken, gin.H{"grade": 90, "feedback": "good"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	graded := decode(t, rr)
	assert.Equal(t, "graded", graded["status"])
	assert.Equal(t, float64(90), graded["grade"])

	// and the student now sees grade and feedback
	rr = doJSON(t, r, http.MethodGet, "/api/v1/student/assignments", studentToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	row := decode(t, rr)["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "graded", row["submission_status"])
	assert.Equal(t, float64(90), row["submission_grade"])
	assert.Equal(t, "good", row["feedback"])
}

func TestDashboardStats(t *testing.T) {
	r, _, _ := setupServer(t)

	register(t, r, "Mr. Taleb", "taleb", "teacher", "", "")
	register(t, r, "Sara", "sara", "student", "10", "A")
	teacherToken := login(t, r, "taleb", "secret123")
	studentToken := login(t, r, "sara", "secret123")

	rr := doJSON(t, r, http.MethodPost, "/api/v1/teacher/rooms", teacherToken, gin.H{
		"name": "Math101", "subject": "Math", "grade": "10", "section": "A",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	code := decode(t, rr)["code"].(string)
	rr = doJSON(t, r, http.MethodPost, "/api/v1/student/rooms/join", studentToken, gin.H{"code": code})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, r, http.MethodPost, "/api/v1/teacher/assignments", teacherToken, gin.H{
		"title": "HW1", "description": "d", "subject": "Math",
		"grade": "10", "section": "A", "due_date": "2024-06-01", "total_marks": 100,
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, r, http.MethodGet, "/api/v1/dashboard", studentToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	stats := decode(t, rr)
	assert.Equal(t, float64(1), stats["rooms_count"])
	assert.Equal(t, float64(1), stats["assignments_count"])
	assert.Equal(t, float64(1), stats["pending_assignments"])

	rr = doJSON(t, r, http.MethodGet, "/api/v1/dashboard", teacherToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	stats = decode(t, rr)
	assert.Equal(t, float64(1), stats["rooms_count"])
	assert.Equal(t, float64(1), stats["students_count"])
	assert.Equal(t, float64(0), stats["pending_grading"])

	adminToken := login(t, r, "admin", "admin123")
	rr = doJSON(t, r, http.MethodGet, "/api/v1/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	stats = decode(t, rr)
	assert.Equal(t, float64(1), stats["students_count"])
	assert.Equal(t, float64(1), stats["teachers_count"])

	rr = doJSON(t, r, http.MethodGet, "/api/v1/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode(t, rr)["data"], 2)
}

func TestRefreshRotation(t *testing.T) {
	r, _, _ := setupServer(t)
	register(t, r, "Sara", "sara", "student", "10", "A")

	rr := doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "sara", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	refresh := decode(t, rr)["refresh_token"].(string)

	rr = doJSON(t, r, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rotated := decode(t, rr)
	assert.NotEmpty(t, rotated["access_token"])
	assert.NotEqual(t, refresh, rotated["refresh_token"])

	// the old refresh token is revoked after rotation
	rr = doJSON(t, r, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refresh_token": refresh})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
