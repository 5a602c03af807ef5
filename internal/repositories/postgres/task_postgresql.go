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

type taskRepository struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewTaskPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.TaskRepository {
	return &taskRepository{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// ===== BASIC CRUD OPERATIONS =====

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return handleDBError(err, "create task")
	}
	cache.InvalidateTaskCache(ctx, r.cacheManager, task.ID, task.SubjectID)
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task

	key := fmt.Sprintf("id:%s", id)
	err := r.cacheManager.Task.CacheOrExecute(ctx, key, &task, cache.TaskTTL, func() (interface{}, error) {
		var out models.Task
		if err := r.db.WithContext(ctx).First(&out, "id = ?", id).Error; err != nil {
			return nil, handleDBError(err, "get task by id")
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *taskRepository) GetByIDWithSubmissions(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).
		Preload("Submissions").
		First(&task, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get task with submissions")
	}
	return &task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return handleDBError(err, "update task")
	}
	cache.InvalidateTaskCache(ctx, r.cacheManager, task.ID, task.SubjectID)
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Task{}, "id = ?", id).Error; err != nil {
		return handleDBError(err, "delete task")
	}
	cache.SafeDelete(ctx, r.cacheManager.Task, fmt.Sprintf("id:%s", id))
	return nil
}

// ===== QUERY OPERATIONS =====

func (r *taskRepository) List(ctx context.Context, filters repositories.TaskFilters) ([]*models.Task, int64, error) {
	var tasks []*models.Task
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Task{})

	if filters.SubjectID != nil {
		query = query.Where("subject_id = ?", *filters.SubjectID)
	}
	if filters.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filters.TeacherID)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if filters.DueFrom != nil {
		query = query.Where("due_date >= ?", *filters.DueFrom)
	}
	if filters.DueTo != nil {
		query = query.Where("due_date <= ?", *filters.DueTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count tasks")
	}

	query = applySort(query, filters.SortBy, filters.SortOrder, map[string]bool{
		"created_at": true, "title": true, "due_date": true,
	})
	query = applyPagination(query, filters.Limit, filters.Offset)

	if err := query.Find(&tasks).Error; err != nil {
		return nil, 0, handleDBError(err, "list tasks")
	}

	return tasks, total, nil
}

// ===== SUBMISSION OPERATIONS =====

func (r *taskRepository) CreateSubmission(ctx context.Context, submission *models.Submission) error {
	if err := r.db.WithContext(ctx).Create(submission).Error; err != nil {
		return handleDBError(err, "create submission")
	}
	return nil
}

func (r *taskRepository) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get submission")
	}
	return &submission, nil
}

func (r *taskRepository) GetSubmissionByStudent(ctx context.Context, taskID, studentID string) (*models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Where("task_id = ? AND student_id = ?", taskID, studentID).
		First(&submission).Error; err != nil {
		return nil, handleDBError(err, "get submission by student")
	}
	return &submission, nil
}

func (r *taskRepository) UpdateSubmission(ctx context.Context, submission *models.Submission) error {
	if err := r.db.WithContext(ctx).Save(submission).Error; err != nil {
		return handleDBError(err, "update submission")
	}
	return nil
}

func (r *taskRepository) ListSubmissions(ctx context.Context, taskID string) ([]*models.Submission, error) {
	var submissions []*models.Submission
	if err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("submitted_at desc").
		Find(&submissions).Error; err != nil {
		return nil, handleDBError(err, "list submissions")
	}
	return submissions, nil
}

func (r *taskRepository) ListSubmissionsByStudent(ctx context.Context, studentID string) ([]*models.Submission, error) {
	var submissions []*models.Submission
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("submitted_at desc").
		Find(&submissions).Error; err != nil {
		return nil, handleDBError(err, "list submissions by student")
	}
	return submissions, nil
}
