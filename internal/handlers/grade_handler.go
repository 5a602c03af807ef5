package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/repositories"
	"github.com/altius-edu/portal-service/internal/services"
	"github.com/altius-edu/portal-service/internal/utils"
)

type GradeHandler struct {
	BaseHandler
	gradeService services.GradeService
}

func NewGradeHandler(gradeService services.GradeService, logger utils.Logger) *GradeHandler {
	return &GradeHandler{
		BaseHandler:  NewBaseHandler(logger),
		gradeService: gradeService,
	}
}

func (h *GradeHandler) CreateGrade(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req services.CreateGradeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	grade, err := h.gradeService.Create(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, grade)
}

func (h *GradeHandler) UpdateGrade(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req services.UpdateGradeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	grade, err := h.gradeService.Update(c.Request.Context(), c.Param("id"), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grade)
}

func (h *GradeHandler) DeleteGrade(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	if err := h.gradeService.Delete(c.Request.Context(), c.Param("id"), user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *GradeHandler) ListGrades(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	filters := repositories.GradeFilters{
		Limit:  parseIntQuery(c, "limit", 20),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if studentID := c.Query("student_id"); studentID != "" {
		filters.StudentID = &studentID
	}
	if subjectID := c.Query("subject_id"); subjectID != "" {
		filters.SubjectID = &subjectID
	}
	if period := c.Query("period"); period != "" {
		filters.Period = &period
	}
	if gradeType := c.Query("type"); gradeType != "" {
		t := models.GradeType(gradeType)
		filters.Type = &t
	}

	resp, err := h.gradeService.List(c.Request.Context(), filters, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// MyGrades returns the calling student's record with the overall average.
func (h *GradeHandler) MyGrades(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	resp, err := h.gradeService.GetByStudent(c.Request.Context(), user.ID, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *GradeHandler) GetStudentGrades(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	resp, err := h.gradeService.GetByStudent(c.Request.Context(), c.Param("student_id"), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
