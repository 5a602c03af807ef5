package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/repositories"
	"github.com/altius-edu/portal-service/internal/services"
	"github.com/altius-edu/portal-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	result, err := h.userService.GetByID(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	filters := userFiltersFromQuery(c)

	resp, err := h.userService.List(c.Request.Context(), filters, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) SearchUsers(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	resp, err := h.userService.Search(c.Request.Context(), c.Query("q"), userFiltersFromQuery(c), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func userFiltersFromQuery(c *gin.Context) repositories.UserFilters {
	filters := repositories.UserFilters{
		Limit:  parseIntQuery(c, "limit", 20),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if role := c.Query("role"); role != "" {
		normalized := models.NormalizeRole(role)
		filters.Role = &normalized
	}
	if institutionID := c.Query("institution_id"); institutionID != "" {
		filters.InstitutionID = &institutionID
	}
	return filters
}
