package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/altius-edu/portal-service/internal/repositories"
)

// handleDBError maps GORM errors to repository errors with context.
func handleDBError(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// applySort appends a validated ORDER BY clause. Unknown columns fall back to
// created_at to keep user input out of the SQL.
func applySort(query *gorm.DB, sortBy, sortOrder string, allowed map[string]bool) *gorm.DB {
	if !allowed[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	return query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))
}

// applyPagination applies limit/offset with a sane default page size.
func applyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}
