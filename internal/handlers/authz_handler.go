package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altius-edu/portal-service/internal/authz"
	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/utils"
)

// AuthzHandler exposes the route guard and the derived navigation menu to the
// SPA: one endpoint answers "may I enter this view", the other "what do I put
// in the sidebar".
type AuthzHandler struct {
	BaseHandler
	guard      *authz.Guard
	navigation *authz.Navigation
}

func NewAuthzHandler(guard *authz.Guard, navigation *authz.Navigation, logger utils.Logger) *AuthzHandler {
	return &AuthzHandler{
		BaseHandler: NewBaseHandler(logger),
		guard:       guard,
		navigation:  navigation,
	}
}

// Decision evaluates the guard for a view path on behalf of the current
// principal. Anonymous callers are evaluated too; that is the whole point.
func (h *AuthzHandler) Decision(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "path query parameter is required",
		})
		return
	}

	principal, _ := h.currentUser(c)
	decision := h.guard.Check(principal, path)

	c.JSON(http.StatusOK, decision)
}

// Navigation returns the menu for the caller's role, derived from the same
// route table the guard enforces.
func (h *AuthzHandler) Navigation(c *gin.Context) {
	var role models.UserRole
	if user, ok := h.currentUser(c); ok && user != nil {
		role = user.Role
	}

	entries := h.navigation.EntriesFor(role)
	if entries == nil {
		entries = []authz.NavEntry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"role":    role,
		"entries": entries,
	})
}
