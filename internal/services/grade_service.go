package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/altius-edu/portal-service/internal/events"
	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/repositories"
	"github.com/altius-edu/portal-service/internal/validator"
)

type gradeService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewGradeService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) GradeService {
	return &gradeService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *gradeService) Create(ctx context.Context, req *CreateGradeRequest, requester *models.User) (*models.Grade, error) {
	if errs := s.validator.GetBusinessValidator().ValidateGradeCreate(req); len(errs) > 0 {
		return nil, errs
	}
	if !canManageAcademics(requester.Role) {
		return nil, NewPermissionError(requester.ID, "", "grade", "create", "insufficient role permissions")
	}

	subject, err := s.repo.Subject().GetByID(ctx, req.SubjectID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	if requester.Role == models.RoleTeacher && subject.TeacherID != requester.ID {
		return nil, NewPermissionError(requester.ID, req.SubjectID, "grade", "create", "not the subject's teacher")
	}

	grade := &models.Grade{
		ID:         uuid.New().String(),
		StudentID:  req.StudentID,
		SubjectID:  req.SubjectID,
		TaskID:     req.TaskID,
		Value:      req.Value,
		MaxValue:   req.MaxValue,
		Period:     req.Period,
		Type:       req.Type,
		RecordedBy: requester.ID,
		Date:       time.Now().UTC(),
	}
	if grade.Type == "" {
		grade.Type = models.GradeAssignment
	}

	if err := s.repo.Grade().Create(ctx, grade); err != nil {
		return nil, fmt.Errorf("failed to create grade: %w", err)
	}

	s.logger.Info("Grade recorded", "grade_id", grade.ID, "student_id", grade.StudentID, "subject_id", grade.SubjectID)
	s.publish(ctx, &events.Event{
		Type:      events.GradeRecorded,
		ActorID:   requester.ID,
		ActorRole: string(requester.Role),
		Payload: map[string]any{
			"grade_id":   grade.ID,
			"student_id": grade.StudentID,
			"subject_id": grade.SubjectID,
			"value":      grade.Value,
			"max_value":  grade.MaxValue,
		},
	})

	return grade, nil
}

func (s *gradeService) Update(ctx context.Context, id string, req *UpdateGradeRequest, requester *models.User) (*models.Grade, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	grade, err := s.getGrade(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkModify(ctx, grade, requester, "update"); err != nil {
		return nil, err
	}

	if req.Value != nil {
		grade.Value = *req.Value
	}
	if req.MaxValue != nil {
		grade.MaxValue = *req.MaxValue
	}
	if req.Period != nil {
		grade.Period = *req.Period
	}
	if grade.Value > grade.MaxValue {
		return nil, validator.ValidationErrors{{Field: "value", Message: "value cannot exceed max_value"}}
	}

	if err := s.repo.Grade().Update(ctx, grade); err != nil {
		return nil, fmt.Errorf("failed to update grade: %w", err)
	}
	return grade, nil
}

func (s *gradeService) Delete(ctx context.Context, id string, requester *models.User) error {
	grade, err := s.getGrade(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkModify(ctx, grade, requester, "delete"); err != nil {
		return err
	}

	if err := s.repo.Grade().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete grade: %w", err)
	}

	s.logger.Info("Grade deleted", "grade_id", id, "by", requester.ID)
	return nil
}

func (s *gradeService) List(ctx context.Context, filters repositories.GradeFilters, requester *models.User) (*GradeListResponse, error) {
	// Students only read their own marks.
	if requester.Role == models.RoleStudent {
		filters.StudentID = &requester.ID
	}

	grades, total, err := s.repo.Grade().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}

	resp := &GradeListResponse{
		Grades: grades,
		Total:  total,
		Page:   pageFromOffset(filters.Offset, filters.Limit),
		Size:   filters.Limit,
	}
	if filters.StudentID != nil {
		avg, err := s.repo.Grade().AverageForStudent(ctx, *filters.StudentID, filters.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to compute average: %w", err)
		}
		resp.Average = &avg
	}
	return resp, nil
}

func (s *gradeService) GetByStudent(ctx context.Context, studentID string, requester *models.User) (*GradeListResponse, error) {
	if requester.Role == models.RoleStudent && requester.ID != studentID {
		return nil, NewPermissionError(requester.ID, studentID, "grade", "read", "cannot read another student's grades")
	}

	grades, err := s.repo.Grade().GetByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student grades: %w", err)
	}

	avg, err := s.repo.Grade().AverageForStudent(ctx, studentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to compute average: %w", err)
	}

	return &GradeListResponse{
		Grades:  grades,
		Total:   int64(len(grades)),
		Average: &avg,
	}, nil
}

// ===== HELPERS =====

func (s *gradeService) getGrade(ctx context.Context, id string) (*models.Grade, error) {
	grade, err := s.repo.Grade().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrGradeNotFound
		}
		return nil, fmt.Errorf("failed to get grade: %w", err)
	}
	return grade, nil
}

func (s *gradeService) checkModify(ctx context.Context, grade *models.Grade, requester *models.User, action string) error {
	if isStaff(requester.Role) {
		return nil
	}
	if requester.Role != models.RoleTeacher {
		return NewPermissionError(requester.ID, grade.ID, "grade", action, "insufficient role permissions")
	}

	subject, err := s.repo.Subject().GetByID(ctx, grade.SubjectID)
	if err != nil {
		return fmt.Errorf("failed to get subject: %w", err)
	}
	if subject.TeacherID != requester.ID {
		return NewPermissionError(requester.ID, grade.ID, "grade", action, "not the subject's teacher")
	}
	return nil
}

func (s *gradeService) publish(ctx context.Context, event *events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "type", event.Type, "error", err)
	}
}
