package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/altius-edu/portal-service/internal/cache"
	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/repositories"
)

type subjectRepository struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewSubjectPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.SubjectRepository {
	return &subjectRepository{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// ===== BASIC CRUD OPERATIONS =====

func (r *subjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if err := r.db.WithContext(ctx).Create(subject).Error; err != nil {
		return handleDBError(err, "create subject")
	}
	cache.InvalidateSubjectCache(ctx, r.cacheManager, subject.ID, subject.TeacherID)
	return nil
}

func (r *subjectRepository) GetByID(ctx context.Context, id string) (*models.Subject, error) {
	var subject models.Subject
	if err := r.db.WithContext(ctx).First(&subject, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get subject by id")
	}
	return &subject, nil
}

func (r *subjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	if err := r.db.WithContext(ctx).Save(subject).Error; err != nil {
		return handleDBError(err, "update subject")
	}
	cache.InvalidateSubjectCache(ctx, r.cacheManager, subject.ID, subject.TeacherID)
	return nil
}

func (r *subjectRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Subject{}, "id = ?", id).Error; err != nil {
		return handleDBError(err, "delete subject")
	}
	cache.SafeDelete(ctx, r.cacheManager.Subject, fmt.Sprintf("id:%s", id))
	return nil
}

// ===== QUERY OPERATIONS =====

func (r *subjectRepository) List(ctx context.Context, filters repositories.SubjectFilters) ([]*models.Subject, int64, error) {
	var subjects []*models.Subject
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Subject{})

	if filters.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filters.TeacherID)
	}
	if filters.GradeLevel != nil {
		query = query.Where("grade_level = ?", *filters.GradeLevel)
	}
	if filters.InstitutionID != nil {
		query = query.Where("institution_id = ?", *filters.InstitutionID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count subjects")
	}

	query = applySort(query, filters.SortBy, filters.SortOrder, map[string]bool{
		"created_at": true, "name": true, "grade_level": true,
	})
	query = applyPagination(query, filters.Limit, filters.Offset)

	if err := query.Find(&subjects).Error; err != nil {
		return nil, 0, handleDBError(err, "list subjects")
	}

	return subjects, total, nil
}

func (r *subjectRepository) GetByTeacher(ctx context.Context, teacherID string) ([]*models.Subject, error) {
	var subjects []*models.Subject

	key := fmt.Sprintf("teacher:%s:all", teacherID)
	err := r.cacheManager.Subject.CacheOrExecute(ctx, key, &subjects, cache.SubjectTTL, func() (interface{}, error) {
		var out []*models.Subject
		if err := r.db.WithContext(ctx).
			Where("teacher_id = ?", teacherID).
			Order("name asc").
			Find(&out).Error; err != nil {
			return nil, handleDBError(err, "get subjects by teacher")
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	return subjects, nil
}
