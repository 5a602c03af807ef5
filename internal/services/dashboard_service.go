package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/repositories"
)

type dashboardService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, logger *slog.Logger) DashboardService {
	return &dashboardService{repo: repo, logger: logger}
}

// Stats returns the overview matching the caller's role. Coordinators see
// their institution; admins see the whole platform.
func (s *dashboardService) Stats(ctx context.Context, user *models.User) (*repositories.DashboardStats, error) {
	var (
		stats *repositories.DashboardStats
		err   error
	)

	switch user.Role {
	case models.RoleStudent:
		stats, err = s.repo.Dashboard().StudentStats(ctx, user.ID)
	case models.RoleTeacher:
		stats, err = s.repo.Dashboard().TeacherStats(ctx, user.ID)
	case models.RoleCoordinator:
		stats, err = s.repo.Dashboard().InstitutionStats(ctx, user.InstitutionID)
	case models.RoleAdmin:
		stats, err = s.repo.Dashboard().InstitutionStats(ctx, nil)
	default:
		return nil, NewPermissionError(user.ID, "", "dashboard", "read", "unknown role")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}

	return stats, nil
}
