package repositories

import (
	"context"

	"github.com/altius-edu/portal-service/internal/models"
)

// UserFilters defines filters for user queries
type UserFilters struct {
	Query         string            // Search query for name or email
	Role          *models.UserRole  // Filter by canonical role
	InstitutionID *string           // Filter by institution
	Limit         int               // Page size
	Offset        int               // Offset for pagination
}

// UserRepository interface for user operations. The portal is not the owner
// of identity data; reads go to Casdoor with Redis caching in front.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)

	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	Search(ctx context.Context, query string, filters UserFilters) ([]*models.User, int64, error)

	ExistsByID(ctx context.Context, id string) (bool, error)
	HasRole(ctx context.Context, id string, role models.UserRole) (bool, error)

	// InvalidateCache drops the cached read model after a profile update.
	InvalidateCache(ctx context.Context, id string) error
}
