package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/repositories"
	"github.com/altius-edu/portal-service/internal/validator"
)

type subjectService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSubjectService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) SubjectService {
	return &subjectService{repo: repo, logger: logger, validator: validator}
}

func (s *subjectService) Create(ctx context.Context, req *CreateSubjectRequest, requester *models.User) (*models.Subject, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}
	if !canManageAcademics(requester.Role) {
		return nil, NewPermissionError(requester.ID, "", "subject", "create", "insufficient role permissions")
	}
	// Teachers create subjects for themselves only.
	if requester.Role == models.RoleTeacher && req.TeacherID != requester.ID {
		return nil, NewPermissionError(requester.ID, "", "subject", "create", "teacher can only create own subjects")
	}

	subject := &models.Subject{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		GradeLevel:  req.GradeLevel,
		Color:       req.Color,
		TeacherID:   req.TeacherID,
	}
	if req.Institution != nil {
		subject.InstitutionID = req.Institution
	} else {
		subject.InstitutionID = requester.InstitutionID
	}

	if err := s.repo.Subject().Create(ctx, subject); err != nil {
		return nil, fmt.Errorf("failed to create subject: %w", err)
	}

	s.logger.Info("Subject created", "subject_id", subject.ID, "teacher_id", subject.TeacherID)
	return subject, nil
}

func (s *subjectService) GetByID(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.repo.Subject().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	return subject, nil
}

func (s *subjectService) Update(ctx context.Context, id string, req *UpdateSubjectRequest, requester *models.User) (*models.Subject, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	subject, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canModify(subject, requester) {
		return nil, NewPermissionError(requester.ID, id, "subject", "update", "not owner or insufficient permissions")
	}

	if req.Name != nil {
		subject.Name = *req.Name
	}
	if req.Description != nil {
		subject.Description = *req.Description
	}
	if req.GradeLevel != nil {
		subject.GradeLevel = *req.GradeLevel
	}
	if req.Color != nil {
		subject.Color = *req.Color
	}
	if req.TeacherID != nil {
		// Reassignment is a staff operation.
		if !isStaff(requester.Role) {
			return nil, NewPermissionError(requester.ID, id, "subject", "update", "only staff can reassign a subject")
		}
		subject.TeacherID = *req.TeacherID
	}

	if err := s.repo.Subject().Update(ctx, subject); err != nil {
		return nil, fmt.Errorf("failed to update subject: %w", err)
	}
	return subject, nil
}

func (s *subjectService) Delete(ctx context.Context, id string, requester *models.User) error {
	subject, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.canModify(subject, requester) {
		return NewPermissionError(requester.ID, id, "subject", "delete", "not owner or insufficient permissions")
	}

	if err := s.repo.Subject().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete subject: %w", err)
	}

	s.logger.Info("Subject deleted", "subject_id", id, "by", requester.ID)
	return nil
}

func (s *subjectService) List(ctx context.Context, filters repositories.SubjectFilters) (*SubjectListResponse, error) {
	subjects, total, err := s.repo.Subject().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}

	return &SubjectListResponse{
		Subjects: subjects,
		Total:    total,
		Page:     pageFromOffset(filters.Offset, filters.Limit),
		Size:     filters.Limit,
	}, nil
}

func (s *subjectService) GetByTeacher(ctx context.Context, teacherID string) ([]*models.Subject, error) {
	subjects, err := s.repo.Subject().GetByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subjects by teacher: %w", err)
	}
	return subjects, nil
}

func (s *subjectService) canModify(subject *models.Subject, requester *models.User) bool {
	if isStaff(requester.Role) {
		return true
	}
	return requester.Role == models.RoleTeacher && subject.TeacherID == requester.ID
}
