package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/repositories"
)

type institutionService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewInstitutionService(repo repositories.Repository, logger *slog.Logger) InstitutionService {
	return &institutionService{repo: repo, logger: logger}
}

func (s *institutionService) GetByID(ctx context.Context, id string) (*models.Institution, error) {
	institution, err := s.repo.Institution().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInstitutionNotFound
		}
		return nil, fmt.Errorf("failed to get institution: %w", err)
	}
	return institution, nil
}

func (s *institutionService) List(ctx context.Context, limit, offset int) ([]*models.Institution, int64, error) {
	institutions, total, err := s.repo.Institution().List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list institutions: %w", err)
	}
	return institutions, total, nil
}

func (s *institutionService) ListGrades(ctx context.Context, institutionID string) ([]*models.AcademicGrade, error) {
	grades, err := s.repo.Institution().ListGrades(ctx, institutionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list academic grades: %w", err)
	}
	return grades, nil
}
