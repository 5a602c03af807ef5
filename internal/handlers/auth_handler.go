package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altius-edu/portal-service/internal/services"
	"github.com/altius-edu/portal-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
	}
}

// Login exchanges the OAuth code for a session. The response carries the
// principal with its canonical role and where the SPA should navigate next.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout erases the caller's durable session.
func (h *AuthHandler) Logout(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), user.ID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSession rehydrates the caller's session state.
func (h *AuthHandler) GetSession(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	resp, err := h.authService.GetSession(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateProfile patches the caller's profile without touching the token.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req services.ProfileUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating profile", "user_id", user.ID)

	resp, err := h.authService.UpdateProfile(c.Request.Context(), user.ID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
