package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/repositories"
)

type institutionRepository struct {
	db *gorm.DB
}

func NewInstitutionPostgreSQL(db *gorm.DB) repositories.InstitutionRepository {
	return &institutionRepository{db: db}
}

func (r *institutionRepository) GetByID(ctx context.Context, id string) (*models.Institution, error) {
	var institution models.Institution
	if err := r.db.WithContext(ctx).First(&institution, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get institution by id")
	}
	return &institution, nil
}

func (r *institutionRepository) List(ctx context.Context, limit, offset int) ([]*models.Institution, int64, error) {
	var institutions []*models.Institution
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Institution{}).Where("is_active = ?", true)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count institutions")
	}

	query = applyPagination(query.Order("name asc"), limit, offset)
	if err := query.Find(&institutions).Error; err != nil {
		return nil, 0, handleDBError(err, "list institutions")
	}

	return institutions, total, nil
}

func (r *institutionRepository) ListGrades(ctx context.Context, institutionID string) ([]*models.AcademicGrade, error) {
	var grades []*models.AcademicGrade
	if err := r.db.WithContext(ctx).
		Where("institution_id = ?", institutionID).
		Order("level asc").
		Find(&grades).Error; err != nil {
		return nil, handleDBError(err, "list academic grades")
	}
	return grades, nil
}
