package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/repositories"
)

type userService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewUserService(repo repositories.Repository, logger *slog.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) GetByID(ctx context.Context, id string, requesterID string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// List is restricted to staff; coordinators only see their own institution.
func (s *userService) List(ctx context.Context, filters repositories.UserFilters, requester *models.User) (*UserListResponse, error) {
	if !isStaff(requester.Role) {
		return nil, NewPermissionError(requester.ID, "", "user", "list", "insufficient role permissions")
	}
	if requester.Role == models.RoleCoordinator && requester.InstitutionID != nil {
		filters.InstitutionID = requester.InstitutionID
	}

	users, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &UserListResponse{
		Users: users,
		Total: total,
		Page:  pageFromOffset(filters.Offset, filters.Limit),
		Size:  filters.Limit,
	}, nil
}

func (s *userService) Search(ctx context.Context, query string, filters repositories.UserFilters, requester *models.User) (*UserListResponse, error) {
	if !isStaff(requester.Role) {
		return nil, NewPermissionError(requester.ID, "", "user", "search", "insufficient role permissions")
	}
	if requester.Role == models.RoleCoordinator && requester.InstitutionID != nil {
		filters.InstitutionID = requester.InstitutionID
	}

	users, total, err := s.repo.User().Search(ctx, query, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	return &UserListResponse{
		Users: users,
		Total: total,
		Page:  pageFromOffset(filters.Offset, filters.Limit),
		Size:  filters.Limit,
	}, nil
}

// ===== SHARED HELPERS =====

func isStaff(role models.UserRole) bool {
	return role == models.RoleCoordinator || role == models.RoleAdmin
}

func canManageAcademics(role models.UserRole) bool {
	return role == models.RoleTeacher || isStaff(role)
}

func pageFromOffset(offset, limit int) int {
	if limit <= 0 {
		return 1
	}
	return offset/limit + 1
}
