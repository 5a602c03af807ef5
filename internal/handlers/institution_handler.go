package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altius-edu/portal-service/internal/services"
	"github.com/altius-edu/portal-service/internal/utils"
)

type InstitutionHandler struct {
	BaseHandler
	institutionService services.InstitutionService
}

func NewInstitutionHandler(institutionService services.InstitutionService, logger utils.Logger) *InstitutionHandler {
	return &InstitutionHandler{
		BaseHandler:        NewBaseHandler(logger),
		institutionService: institutionService,
	}
}

// ListInstitutions is public: the registration form needs it before login.
func (h *InstitutionHandler) ListInstitutions(c *gin.Context) {
	institutions, total, err := h.institutionService.List(
		c.Request.Context(),
		parseIntQuery(c, "limit", 50),
		parseIntQuery(c, "offset", 0),
	)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"institutions": institutions, "total": total})
}

func (h *InstitutionHandler) GetInstitution(c *gin.Context) {
	institution, err := h.institutionService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, institution)
}

// ListInstitutionGrades returns the academic grades offered by an institution.
func (h *InstitutionHandler) ListInstitutionGrades(c *gin.Context) {
	grades, err := h.institutionService.ListGrades(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"grades": grades})
}
