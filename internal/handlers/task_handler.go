package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/repositories"
	"github.com/altius-edu/portal-service/internal/services"
	"github.com/altius-edu/portal-service/internal/utils"
)

type TaskHandler struct {
	BaseHandler
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService, logger utils.Logger) *TaskHandler {
	return &TaskHandler{
		BaseHandler: NewBaseHandler(logger),
		taskService: taskService,
	}
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req services.CreateTaskRequest
	if !h.bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetByID(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req services.UpdateTaskRequest
	if !h.bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), c.Param("id"), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), c.Param("id"), user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	filters := repositories.TaskFilters{
		Limit:     parseIntQuery(c, "limit", 20),
		Offset:    parseIntQuery(c, "offset", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if subjectID := c.Query("subject_id"); subjectID != "" {
		filters.SubjectID = &subjectID
	}
	if taskType := c.Query("type"); taskType != "" {
		t := models.TaskType(taskType)
		filters.Type = &t
	}
	if active := c.Query("is_active"); active != "" {
		isActive := active == "true"
		filters.IsActive = &isActive
	}

	resp, err := h.taskService.List(c.Request.Context(), filters, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SubmitTask records the calling student's answers for the task.
func (h *TaskHandler) SubmitTask(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req services.CreateSubmissionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.TaskID = c.Param("id")

	h.LogRequest(c, "Submitting task", "task_id", req.TaskID, "student_id", user.ID)

	submission, err := h.taskService.Submit(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

func (h *TaskHandler) GradeSubmission(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req services.GradeSubmissionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	submission, err := h.taskService.GradeSubmission(c.Request.Context(), c.Param("submission_id"), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

func (h *TaskHandler) ListSubmissions(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	submissions, err := h.taskService.GetSubmissions(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}

// MySubmissions lists the calling student's submissions across tasks.
func (h *TaskHandler) MySubmissions(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	submissions, err := h.taskService.GetStudentSubmissions(c.Request.Context(), user.ID, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}
