package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/altius-edu/portal-service/internal/repositories"
	"github.com/altius-edu/portal-service/internal/services"
	"github.com/altius-edu/portal-service/internal/utils"
)

type SubjectHandler struct {
	BaseHandler
	subjectService services.SubjectService
}

func NewSubjectHandler(subjectService services.SubjectService, logger utils.Logger) *SubjectHandler {
	return &SubjectHandler{
		BaseHandler:    NewBaseHandler(logger),
		subjectService: subjectService,
	}
}

func (h *SubjectHandler) CreateSubject(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req services.CreateSubjectRequest
	if !h.bindJSON(c, &req) {
		return
	}

	subject, err := h.subjectService.Create(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subject)
}

func (h *SubjectHandler) GetSubject(c *gin.Context) {
	subject, err := h.subjectService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

func (h *SubjectHandler) UpdateSubject(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req services.UpdateSubjectRequest
	if !h.bindJSON(c, &req) {
		return
	}

	subject, err := h.subjectService.Update(c.Request.Context(), c.Param("id"), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

func (h *SubjectHandler) DeleteSubject(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	if err := h.subjectService.Delete(c.Request.Context(), c.Param("id"), user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	filters := repositories.SubjectFilters{
		Limit:     parseIntQuery(c, "limit", 20),
		Offset:    parseIntQuery(c, "offset", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if teacherID := c.Query("teacher_id"); teacherID != "" {
		filters.TeacherID = &teacherID
	}
	if gradeLevel := c.Query("grade_level"); gradeLevel != "" {
		filters.GradeLevel = &gradeLevel
	}
	if institutionID := c.Query("institution_id"); institutionID != "" {
		filters.InstitutionID = &institutionID
	}

	resp, err := h.subjectService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetMySubjects returns the subjects the calling teacher owns.
func (h *SubjectHandler) GetMySubjects(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	subjects, err := h.subjectService.GetByTeacher(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
