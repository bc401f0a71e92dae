package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alrashed/school_portal/internal/services"
)

type ChatController struct {
	Rooms *services.RoomService
	Chat  *services.ChatService
}

type postMessageRequest struct {
	Message string `json:"message"`
}

// authorize resolves room access for the caller: students must be members,
// teachers must own the room. Chat has no admin surface.
func (cc *ChatController) authorize(c *gin.Context, roomID uint) bool {
	user := currentUser(c)
	var err error
	switch user.Role {
	case "student":
		_, err = cc.Rooms.AuthorizeMember(roomID, user.ID)
	case "teacher":
		_, err = cc.Rooms.AuthorizeOwner(roomID, user.ID)
	default:
		err = services.NewNotAuthorizedError("no chat access for this role")
	}
	if err != nil {
		respondError(c, err)
		return false
	}
	return true
}

// GetMessages returns the room's recent messages in chronological order.
// Clients poll this endpoint; there is no push channel.
func (cc *ChatController) GetMessages(c *gin.Context) {
	roomID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if !cc.authorize(c, roomID) {
		return
	}
	messages, err := cc.Chat.ListRecentMessages(roomID, services.DefaultMessageWindow)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": messages})
}

// PostMessage appends a message to the room's feed under the caller's
// name.
func (cc *ChatController) PostMessage(c *gin.Context) {
	roomID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if !cc.authorize(c, roomID) {
		return
	}
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user := currentUser(c)
	msg, err := cc.Chat.PostMessage(roomID, user.ID, user.Name, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}
