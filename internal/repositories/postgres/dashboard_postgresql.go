package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/repositories"
)

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardPostgreSQL(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) StudentStats(ctx context.Context, studentID string) (*repositories.DashboardStats, error) {
	stats := &repositories.DashboardStats{}
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Submission{}).
		Where("student_id = ?", studentID).
		Count(&stats.SubmissionCount).Error; err != nil {
		return nil, handleDBError(err, "count student submissions")
	}

	if err := db.Model(&models.Submission{}).
		Where("student_id = ? AND status = ?", studentID, models.SubmissionGraded).
		Count(&stats.GradedCount).Error; err != nil {
		return nil, handleDBError(err, "count graded submissions")
	}

	if err := db.Model(&models.Task{}).
		Where("is_active = ? AND id NOT IN (?)", true,
			db.Model(&models.Submission{}).Select("task_id").Where("student_id = ?", studentID)).
		Count(&stats.PendingTaskCount).Error; err != nil {
		return nil, handleDBError(err, "count pending tasks")
	}

	var avg *float64
	if err := db.Model(&models.Grade{}).
		Where("student_id = ? AND max_value > 0", studentID).
		Select("AVG(value / max_value * 100)").
		Scan(&avg).Error; err != nil {
		return nil, handleDBError(err, "student average grade")
	}
	stats.AverageGrade = avg

	return stats, nil
}

func (r *dashboardRepository) TeacherStats(ctx context.Context, teacherID string) (*repositories.DashboardStats, error) {
	stats := &repositories.DashboardStats{}
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Subject{}).
		Where("teacher_id = ?", teacherID).
		Count(&stats.SubjectCount).Error; err != nil {
		return nil, handleDBError(err, "count teacher subjects")
	}

	if err := db.Model(&models.Task{}).
		Where("teacher_id = ?", teacherID).
		Count(&stats.TaskCount).Error; err != nil {
		return nil, handleDBError(err, "count teacher tasks")
	}

	if err := db.Model(&models.Submission{}).
		Joins("JOIN tasks ON tasks.id = submissions.task_id").
		Where("tasks.teacher_id = ? AND submissions.status = ?", teacherID, models.SubmissionPending).
		Count(&stats.SubmissionCount).Error; err != nil {
		return nil, handleDBError(err, "count pending submissions for teacher")
	}

	return stats, nil
}

func (r *dashboardRepository) InstitutionStats(ctx context.Context, institutionID *string) (*repositories.DashboardStats, error) {
	stats := &repositories.DashboardStats{}
	db := r.db.WithContext(ctx)

	subjects := db.Model(&models.Subject{})
	tasks := db.Model(&models.Task{})
	if institutionID != nil {
		subjects = subjects.Where("institution_id = ?", *institutionID)
		tasks = tasks.Where("subject_id IN (?)",
			db.Model(&models.Subject{}).Select("id").Where("institution_id = ?", *institutionID))
	}

	if err := subjects.Count(&stats.SubjectCount).Error; err != nil {
		return nil, handleDBError(err, "count institution subjects")
	}
	if err := tasks.Count(&stats.TaskCount).Error; err != nil {
		return nil, handleDBError(err, "count institution tasks")
	}
	if err := db.Model(&models.Institution{}).
		Where("is_active = ?", true).
		Count(&stats.InstitutionActive).Error; err != nil {
		return nil, handleDBError(err, "count active institutions")
	}

	var avg *float64
	grades := db.Model(&models.Grade{}).Where("max_value > 0")
	if institutionID != nil {
		grades = grades.Where("subject_id IN (?)",
			db.Model(&models.Subject{}).Select("id").Where("institution_id = ?", *institutionID))
	}
	if err := grades.Select("AVG(value / max_value * 100)").Scan(&avg).Error; err != nil {
		return nil, handleDBError(err, "institution average grade")
	}
	stats.AverageGrade = avg

	return stats, nil
}
