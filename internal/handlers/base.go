package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altius-edu/portal-service/internal/authz"
	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/services"
	"github.com/altius-edu/portal-service/internal/utils"
	"github.com/altius-edu/portal-service/internal/validator"
)

// ErrorResponse is the wire shape of every error the API returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
	// Redirect tells the SPA where to navigate on auth failures.
	Redirect *RedirectInfo `json:"redirect,omitempty"`
}

// RedirectInfo mirrors the guard's decision: where to go, and on login
// redirects, where the visitor came from.
type RedirectInfo struct {
	To   string `json:"to"`
	From string `json:"from,omitempty"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Info(msg, args...)
}

// currentUser returns the principal set by the auth middleware.
func (h *BaseHandler) currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("user")
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// requireUser aborts with the guard's login redirect when no principal is set.
func (h *BaseHandler) requireUser(c *gin.Context) (*models.User, bool) {
	user, ok := h.currentUser(c)
	if !ok || user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:    "unauthorized",
			Message:  "User not authenticated",
			Redirect: &RedirectInfo{To: authz.LoginPath, From: c.Request.URL.Path},
		})
		c.Abort()
		return nil, false
	}
	return user, true
}

// handleServiceError maps service failures onto HTTP responses. Permission
// refusals carry the caller's role home so the SPA lands somewhere valid.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: "Invalid request payload",
			Details: validationErrs,
		})
		return
	}

	if services.IsNotFoundError(err) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
		return
	}

	if services.IsPermissionError(err) {
		resp := ErrorResponse{
			Error:   "forbidden",
			Message: err.Error(),
		}
		if user, ok := h.currentUser(c); ok && user != nil {
			resp.Redirect = &RedirectInfo{To: authz.DefaultPath(user.Role)}
		}
		c.JSON(http.StatusForbidden, resp)
		return
	}

	switch {
	case errors.Is(err, services.ErrAlreadySubmitted):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict", Message: err.Error()})
	case errors.Is(err, services.ErrTaskNotActive):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "task_not_active", Message: err.Error()})
	case errors.Is(err, services.ErrInvalidLoginState):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:    "unauthorized",
			Message:  err.Error(),
			Redirect: &RedirectInfo{To: authz.LoginPath},
		})
	default:
		utils.FromContext(c, h.logger).Error("Internal error", "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Something went wrong",
		})
	}
}

func (h *BaseHandler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return false
	}
	return true
}
