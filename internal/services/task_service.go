package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/altius-edu/portal-service/internal/events"
	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/repositories"
	"github.com/altius-edu/portal-service/internal/validator"
)

type taskService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTaskService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) TaskService {
	return &taskService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *taskService) Create(ctx context.Context, req *CreateTaskRequest, requester *models.User) (*models.Task, error) {
	if errs := s.validator.GetBusinessValidator().ValidateTaskCreate(req); len(errs) > 0 {
		return nil, errs
	}
	if !canManageAcademics(requester.Role) {
		return nil, NewPermissionError(requester.ID, "", "task", "create", "insufficient role permissions")
	}

	subject, err := s.repo.Subject().GetByID(ctx, req.SubjectID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	if requester.Role == models.RoleTeacher && subject.TeacherID != requester.ID {
		return nil, NewPermissionError(requester.ID, req.SubjectID, "task", "create", "not the subject's teacher")
	}

	task := &models.Task{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		SubjectID:   subject.ID,
		TeacherID:   subject.TeacherID,
		DueDate:     req.DueDate,
		TotalPoints: req.TotalPoints,
		IsActive:    true,
	}
	if task.TotalPoints == 0 {
		task.TotalPoints = sumQuestionPoints(req.Questions)
	}
	if len(req.Questions) > 0 {
		questions, err := buildQuestions(req.Questions)
		if err != nil {
			return nil, err
		}
		task.Questions = questions
	}

	if err := s.repo.Task().Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("Task created", "task_id", task.ID, "subject_id", task.SubjectID, "type", task.Type)
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, id string, requester *models.User) (*TaskResponse, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &TaskResponse{
		Task:    task,
		CanEdit: s.canModify(task, requester),
	}

	if requester.Role == models.RoleStudent {
		// Students never see the answer key.
		stripped, err := stripCorrectAnswers(task.Questions)
		if err != nil {
			return nil, err
		}
		taskCopy := *task
		taskCopy.Questions = stripped
		resp.Task = &taskCopy

		_, err = s.repo.Task().GetSubmissionByStudent(ctx, id, requester.ID)
		switch {
		case err == nil:
			resp.HasSubmitted = true
		case repositories.IsNotFoundError(err):
			resp.CanSubmit = task.IsActive
		default:
			return nil, fmt.Errorf("failed to check submission: %w", err)
		}
	}

	return resp, nil
}

func (s *taskService) Update(ctx context.Context, id string, req *UpdateTaskRequest, requester *models.User) (*models.Task, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canModify(task, requester) {
		return nil, NewPermissionError(requester.ID, id, "task", "update", "not owner or insufficient permissions")
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.TotalPoints != nil {
		task.TotalPoints = *req.TotalPoints
	}
	if req.IsActive != nil {
		task.IsActive = *req.IsActive
	}
	if len(req.Questions) > 0 {
		questions, err := buildQuestions(req.Questions)
		if err != nil {
			return nil, err
		}
		task.Questions = questions
	}

	if err := s.repo.Task().Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, id string, requester *models.User) error {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return err
	}
	if !s.canModify(task, requester) {
		return NewPermissionError(requester.ID, id, "task", "delete", "not owner or insufficient permissions")
	}

	if err := s.repo.Task().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.Info("Task deleted", "task_id", id, "by", requester.ID)
	return nil
}

func (s *taskService) List(ctx context.Context, filters repositories.TaskFilters, requester *models.User) (*TaskListResponse, error) {
	// Teachers default to their own tasks.
	if requester.Role == models.RoleTeacher && filters.TeacherID == nil && filters.SubjectID == nil {
		filters.TeacherID = &requester.ID
	}

	tasks, total, err := s.repo.Task().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	responses := make([]*TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		resp := &TaskResponse{Task: task, CanEdit: s.canModify(task, requester)}
		if requester.Role == models.RoleStudent {
			stripped, err := stripCorrectAnswers(task.Questions)
			if err != nil {
				return nil, err
			}
			taskCopy := *task
			taskCopy.Questions = stripped
			resp.Task = &taskCopy
			resp.CanSubmit = task.IsActive
		}
		responses = append(responses, resp)
	}

	return &TaskListResponse{
		Tasks: responses,
		Total: total,
		Page:  pageFromOffset(filters.Offset, filters.Limit),
		Size:  filters.Limit,
	}, nil
}

// ===== SUBMISSIONS =====

// Submit records the student's answers exactly once per task. Quiz answers are
// auto-graded against the stored key; file-upload tasks stay pending for the
// teacher.
func (s *taskService) Submit(ctx context.Context, req *CreateSubmissionRequest, student *models.User) (*models.Submission, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}
	if student.Role != models.RoleStudent {
		return nil, NewPermissionError(student.ID, req.TaskID, "submission", "create", "only students submit tasks")
	}

	task, err := s.getTask(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}
	if !task.IsActive {
		return nil, ErrTaskNotActive
	}

	if _, err := s.repo.Task().GetSubmissionByStudent(ctx, task.ID, student.ID); err == nil {
		return nil, ErrAlreadySubmitted
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check existing submission: %w", err)
	}

	now := time.Now().UTC()
	submission := &models.Submission{
		ID:          uuid.New().String(),
		TaskID:      task.ID,
		StudentID:   student.ID,
		SubmittedAt: now,
		Status:      models.SubmissionPending,
	}
	if task.DueDate != nil && now.After(*task.DueDate) {
		submission.Status = models.SubmissionLate
	}
	if len(req.Answers) > 0 {
		answers, err := json.Marshal(req.Answers)
		if err != nil {
			return nil, fmt.Errorf("failed to encode answers: %w", err)
		}
		submission.Answers = datatypes.JSON(answers)
	}

	if task.Type == models.TaskQuiz && len(task.Questions) > 0 {
		grade, err := autoGradeQuiz(task, req.Answers)
		if err != nil {
			return nil, err
		}
		submission.Grade = &grade
		submission.Status = models.SubmissionGraded
	}

	if err := s.repo.Task().CreateSubmission(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	s.logger.Info("Task submitted", "task_id", task.ID, "student_id", student.ID, "status", submission.Status)
	s.publish(ctx, &events.Event{
		Type:      events.TaskSubmitted,
		ActorID:   student.ID,
		ActorRole: string(student.Role),
		Payload: map[string]any{
			"task_id":       task.ID,
			"submission_id": submission.ID,
			"status":        submission.Status,
		},
	})

	return submission, nil
}

func (s *taskService) GradeSubmission(ctx context.Context, submissionID string, req *GradeSubmissionRequest, requester *models.User) (*models.Submission, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	submission, err := s.repo.Task().GetSubmission(ctx, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	task, err := s.getTask(ctx, submission.TaskID)
	if err != nil {
		return nil, err
	}
	if !s.canModify(task, requester) {
		return nil, NewPermissionError(requester.ID, submissionID, "submission", "grade", "not the task's teacher")
	}

	grade := req.Grade
	submission.Grade = &grade
	submission.Feedback = req.Feedback
	submission.Status = models.SubmissionGraded

	if err := s.repo.Task().UpdateSubmission(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to update submission: %w", err)
	}

	s.logger.Info("Submission graded", "submission_id", submissionID, "grade", grade, "by", requester.ID)
	return submission, nil
}

func (s *taskService) GetSubmissions(ctx context.Context, taskID string, requester *models.User) ([]*models.Submission, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !s.canModify(task, requester) {
		return nil, NewPermissionError(requester.ID, taskID, "submission", "list", "not the task's teacher")
	}

	submissions, err := s.repo.Task().ListSubmissions(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

func (s *taskService) GetStudentSubmissions(ctx context.Context, studentID string, requester *models.User) ([]*models.Submission, error) {
	if requester.ID != studentID && !isStaff(requester.Role) && requester.Role != models.RoleTeacher {
		return nil, NewPermissionError(requester.ID, studentID, "submission", "list", "cannot read another student's submissions")
	}

	submissions, err := s.repo.Task().ListSubmissionsByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list student submissions: %w", err)
	}
	return submissions, nil
}

// ===== HELPERS =====

func (s *taskService) getTask(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.repo.Task().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (s *taskService) canModify(task *models.Task, requester *models.User) bool {
	if isStaff(requester.Role) {
		return true
	}
	return requester.Role == models.RoleTeacher && task.TeacherID == requester.ID
}

func (s *taskService) publish(ctx context.Context, event *events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "type", event.Type, "error", err)
	}
}

func buildQuestions(reqs []validator.TaskQuestionRequest) (datatypes.JSON, error) {
	questions := make([]models.TaskQuestion, 0, len(reqs))
	for _, q := range reqs {
		questions = append(questions, models.TaskQuestion{
			ID:            uuid.New().String(),
			Type:          q.Type,
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
		})
	}

	data, err := json.Marshal(questions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode questions: %w", err)
	}
	return datatypes.JSON(data), nil
}

func sumQuestionPoints(reqs []validator.TaskQuestionRequest) int {
	total := 0
	for _, q := range reqs {
		total += q.Points
	}
	if total == 0 {
		total = 100
	}
	return total
}

// stripCorrectAnswers clears the answer key from a questions document.
func stripCorrectAnswers(raw datatypes.JSON) (datatypes.JSON, error) {
	if len(raw) == 0 {
		return raw, nil
	}

	var questions []models.TaskQuestion
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	for i := range questions {
		questions[i].CorrectAnswer = ""
	}

	data, err := json.Marshal(questions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode questions: %w", err)
	}
	return datatypes.JSON(data), nil
}

// autoGradeQuiz scores the answers against the stored key and scales the
// result to the task's total points. Answers arrive as the SPA sends them:
// one object per question with "question_id" and "answer".
func autoGradeQuiz(task *models.Task, answers []map[string]any) (float64, error) {
	var questions []models.TaskQuestion
	if err := json.Unmarshal(task.Questions, &questions); err != nil {
		return 0, fmt.Errorf("failed to decode questions: %w", err)
	}

	byQuestion := make(map[string]string, len(answers))
	for _, a := range answers {
		id, _ := a["question_id"].(string)
		answer, _ := a["answer"].(string)
		if id != "" {
			byQuestion[id] = answer
		}
	}

	earned, possible := 0, 0
	for _, q := range questions {
		possible += q.Points
		if answer, ok := byQuestion[q.ID]; ok && answersMatch(answer, q.CorrectAnswer) {
			earned += q.Points
		}
	}
	if possible == 0 {
		return 0, nil
	}

	return float64(earned) / float64(possible) * float64(task.TotalPoints), nil
}

func answersMatch(given, expected string) bool {
	return strings.EqualFold(strings.TrimSpace(given), strings.TrimSpace(expected))
}
