package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alrashed/school_portal/internal/services"
)

type RoomController struct {
	Rooms *services.RoomService
}

type createRoomRequest struct {
	Name        string `json:"name" binding:"required"`
	Subject     string `json:"subject" binding:"required"`
	Grade       string `json:"grade" binding:"required"`
	Section     string `json:"section" binding:"required"`
	Description string `json:"description"`
}

type joinRoomRequest struct {
	Code string `json:"code" binding:"required"`
}

// Create makes a new room owned by the calling teacher and returns its
// join code.
func (rc *RoomController) Create(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user := currentUser(c)
	room, err := rc.Rooms.CreateRoom(user.ID, services.CreateRoomInput{
		Name:        req.Name,
		Subject:     req.Subject,
		Grade:       req.Grade,
		Section:     req.Section,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "created", "id": room.ID, "code": room.Code})
}

// Join enrolls the calling student in the room matching the posted code.
func (rc *RoomController) Join(c *gin.Context) {
	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user := currentUser(c)
	room, err := rc.Rooms.JoinRoom(user.ID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "joined", "room": room})
}

// ListJoined returns the calling student's rooms.
func (rc *RoomController) ListJoined(c *gin.Context) {
	user := currentUser(c)
	rooms, err := rc.Rooms.ListMemberRooms(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rooms})
}

// ListAvailable returns the active rooms of the student's cohort that the
// student has not joined.
func (rc *RoomController) ListAvailable(c *gin.Context) {
	user := currentUser(c)
	rooms, err := rc.Rooms.ListAvailableRooms(user.ID, user.Grade, user.Section)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rooms})
}

// ListOwned returns every room the calling teacher created, with member
// counts.
func (rc *RoomController) ListOwned(c *gin.Context) {
	user := currentUser(c)
	rooms, err := rc.Rooms.ListOwnedRooms(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rooms})
}

// Members returns the roster of a room the calling teacher owns.
func (rc *RoomController) Members(c *gin.Context) {
	roomID, ok := idParam(c, "id")
	if !ok {
		return
	}
	user := currentUser(c)
	if _, err := rc.Rooms.AuthorizeOwner(roomID, user.ID); err != nil {
		respondError(c, err)
		return
	}
	members, err := rc.Rooms.ListMembers(roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": members})
}
