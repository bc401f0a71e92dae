package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alrashed/school_portal/internal/models"
	"github.com/alrashed/school_portal/internal/services"
)

var allowedRoles = map[string]struct{}{
	"admin":   {},
	"teacher": {},
	"student": {},
}

func IsValidRole(role string) bool {
	_, ok := allowedRoles[role]
	return ok
}

// currentUser returns the authenticated user placed in the context by the
// auth middleware.
func currentUser(c *gin.Context) models.User {
	uVal, _ := c.Get("user")
	return uVal.(models.User)
}

// respondError maps a core service error to an HTTP status. Anything that
// is not a typed core error is a storage-layer failure.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case services.IsKind(err, services.KindValidation):
		status = http.StatusBadRequest
	case services.IsKind(err, services.KindNotFound):
		status = http.StatusNotFound
	case services.IsKind(err, services.KindConflict):
		status = http.StatusConflict
	case services.IsKind(err, services.KindNotAuthorized):
		status = http.StatusForbidden
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
