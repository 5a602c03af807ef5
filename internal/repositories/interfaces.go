package repositories

import (
	"context"
	"time"

	"github.com/altius-edu/portal-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type SubjectFilters struct {
	TeacherID     *string `json:"teacher_id"`
	GradeLevel    *string `json:"grade_level"`
	InstitutionID *string `json:"institution_id"`
	Limit         int     `json:"limit"`
	Offset        int     `json:"offset"`
	SortBy        string  `json:"sort_by"`    // "created_at", "name"
	SortOrder     string  `json:"sort_order"` // "asc", "desc"
}

type TaskFilters struct {
	SubjectID *string          `json:"subject_id"`
	TeacherID *string          `json:"teacher_id"`
	Type      *models.TaskType `json:"type"`
	IsActive  *bool            `json:"is_active"`
	DueFrom   *time.Time       `json:"due_from"`
	DueTo     *time.Time       `json:"due_to"`
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
	SortBy    string           `json:"sort_by"`
	SortOrder string           `json:"sort_order"`
}

type GradeFilters struct {
	StudentID *string           `json:"student_id"`
	SubjectID *string           `json:"subject_id"`
	Period    *string           `json:"period"`
	Type      *models.GradeType `json:"type"`
	Limit     int               `json:"limit"`
	Offset    int               `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

type SubjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) error
	GetByID(ctx context.Context, id string) (*models.Subject, error)
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters SubjectFilters) ([]*models.Subject, int64, error)
	GetByTeacher(ctx context.Context, teacherID string) ([]*models.Subject, error)
}

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	GetByIDWithSubmissions(ctx context.Context, id string) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters TaskFilters) ([]*models.Task, int64, error)

	// Submissions
	CreateSubmission(ctx context.Context, submission *models.Submission) error
	GetSubmission(ctx context.Context, id string) (*models.Submission, error)
	GetSubmissionByStudent(ctx context.Context, taskID, studentID string) (*models.Submission, error)
	UpdateSubmission(ctx context.Context, submission *models.Submission) error
	ListSubmissions(ctx context.Context, taskID string) ([]*models.Submission, error)
	ListSubmissionsByStudent(ctx context.Context, studentID string) ([]*models.Submission, error)
}

type GradeRepository interface {
	Create(ctx context.Context, grade *models.Grade) error
	GetByID(ctx context.Context, id string) (*models.Grade, error)
	Update(ctx context.Context, grade *models.Grade) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters GradeFilters) ([]*models.Grade, int64, error)
	GetByStudent(ctx context.Context, studentID string) ([]*models.Grade, error)
	AverageForStudent(ctx context.Context, studentID string, subjectID *string) (float64, error)
}

type InstitutionRepository interface {
	GetByID(ctx context.Context, id string) (*models.Institution, error)
	List(ctx context.Context, limit, offset int) ([]*models.Institution, int64, error)
	ListGrades(ctx context.Context, institutionID string) ([]*models.AcademicGrade, error)
}

// DashboardStats is the role-appropriate overview served to the portal home.
type DashboardStats struct {
	SubjectCount      int64    `json:"subject_count"`
	TaskCount         int64    `json:"task_count"`
	PendingTaskCount  int64    `json:"pending_task_count"`
	SubmissionCount   int64    `json:"submission_count"`
	GradedCount       int64    `json:"graded_count"`
	AverageGrade      *float64 `json:"average_grade,omitempty"`
	StudentCount      int64    `json:"student_count,omitempty"`
	InstitutionActive int64    `json:"institutions_active,omitempty"`
}

type DashboardRepository interface {
	StudentStats(ctx context.Context, studentID string) (*DashboardStats, error)
	TeacherStats(ctx context.Context, teacherID string) (*DashboardStats, error)
	InstitutionStats(ctx context.Context, institutionID *string) (*DashboardStats, error)
}
