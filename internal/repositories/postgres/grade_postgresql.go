package postgres

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/altius-edu/portal-service/internal/cache"
	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/repositories"
)

type gradeRepository struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewGradePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.GradeRepository {
	return &gradeRepository{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (r *gradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	if err := r.db.WithContext(ctx).Create(grade).Error; err != nil {
		return handleDBError(err, "create grade")
	}
	cache.InvalidateGradeCache(ctx, r.cacheManager, grade.StudentID, grade.SubjectID)
	return nil
}

func (r *gradeRepository) GetByID(ctx context.Context, id string) (*models.Grade, error) {
	var grade models.Grade
	if err := r.db.WithContext(ctx).First(&grade, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get grade by id")
	}
	return &grade, nil
}

func (r *gradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	if err := r.db.WithContext(ctx).Save(grade).Error; err != nil {
		return handleDBError(err, "update grade")
	}
	cache.InvalidateGradeCache(ctx, r.cacheManager, grade.StudentID, grade.SubjectID)
	return nil
}

func (r *gradeRepository) Delete(ctx context.Context, id string) error {
	grade, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Grade{}, "id = ?", id).Error; err != nil {
		return handleDBError(err, "delete grade")
	}
	cache.InvalidateGradeCache(ctx, r.cacheManager, grade.StudentID, grade.SubjectID)
	return nil
}

func (r *gradeRepository) List(ctx context.Context, filters repositories.GradeFilters) ([]*models.Grade, int64, error) {
	var grades []*models.Grade
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Grade{})

	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.SubjectID != nil {
		query = query.Where("subject_id = ?", *filters.SubjectID)
	}
	if filters.Period != nil {
		query = query.Where("period = ?", *filters.Period)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count grades")
	}

	query = applyPagination(query.Order("date desc"), filters.Limit, filters.Offset)

	if err := query.Find(&grades).Error; err != nil {
		return nil, 0, handleDBError(err, "list grades")
	}

	return grades, total, nil
}

func (r *gradeRepository) GetByStudent(ctx context.Context, studentID string) ([]*models.Grade, error) {
	var grades []*models.Grade
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("date desc").
		Find(&grades).Error; err != nil {
		return nil, handleDBError(err, "get grades by student")
	}
	return grades, nil
}

// AverageForStudent returns the weighted percentage average across grades,
// optionally scoped to one subject. No grades yields zero.
func (r *gradeRepository) AverageForStudent(ctx context.Context, studentID string, subjectID *string) (float64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Grade{}).
		Where("student_id = ? AND max_value > 0", studentID)
	if subjectID != nil {
		query = query.Where("subject_id = ?", *subjectID)
	}

	var avg *float64
	if err := query.
		Select("AVG(value / max_value * 100)").
		Scan(&avg).Error; err != nil {
		return 0, handleDBError(err, "average grade for student")
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
