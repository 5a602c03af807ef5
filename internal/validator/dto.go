package validator

import (
	"time"

	"github.com/altius-edu/portal-service/internal/models"
)

// LoginRequest carries the OAuth code/state pair the SPA receives from the
// identity provider redirect.
type LoginRequest struct {
	Code  string `json:"code" validate:"required"`
	State string `json:"state" validate:"required"`
	// From is the path the guard preserved before redirecting to login; the
	// response echoes it so the SPA can return there.
	From string `json:"from" validate:"omitempty,max=300"`
}

// ProfileUpdateRequest is a shallow patch of the principal's profile.
type ProfileUpdateRequest struct {
	Email         *string `json:"email" validate:"omitempty,email"`
	FirstName     *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName      *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	AvatarURL     *string `json:"avatar_url" validate:"omitempty,url,max=500"`
	InstitutionID *string `json:"institution_id" validate:"omitempty,max=255"`
	SchoolGradeID *string `json:"school_grade_id" validate:"omitempty,max=255"`
}

type SubjectCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description string  `json:"description" validate:"omitempty,max=1000"`
	GradeLevel  string  `json:"grade_level" validate:"omitempty,max=100"`
	Color       string  `json:"color" validate:"omitempty,max=20"`
	TeacherID   string  `json:"teacher_id" validate:"required"`
	Institution *string `json:"institution_id"`
}

type SubjectUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	GradeLevel  *string `json:"grade_level" validate:"omitempty,max=100"`
	Color       *string `json:"color" validate:"omitempty,max=20"`
	TeacherID   *string `json:"teacher_id" validate:"omitempty"`
}

type TaskQuestionRequest struct {
	Type          models.QuestionType `json:"type" validate:"required,question_type"`
	Question      string              `json:"question" validate:"required,min=1,max=2000"`
	Options       []string            `json:"options" validate:"omitempty,dive,max=500"`
	CorrectAnswer string              `json:"correct_answer" validate:"required"`
	Points        int                 `json:"points" validate:"required,min=1,max=100"`
}

type TaskCreateRequest struct {
	Title       string                `json:"title" validate:"required,min=1,max=200"`
	Description string                `json:"description" validate:"omitempty,max=2000"`
	Type        models.TaskType       `json:"type" validate:"required,task_type"`
	SubjectID   string                `json:"subject_id" validate:"required"`
	DueDate     *time.Time            `json:"due_date" validate:"omitempty,future_date"`
	TotalPoints int                   `json:"total_points" validate:"omitempty,min=1,max=1000"`
	Questions   []TaskQuestionRequest `json:"questions" validate:"omitempty,dive"`
}

type TaskUpdateRequest struct {
	Title       *string               `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string               `json:"description" validate:"omitempty,max=2000"`
	DueDate     *time.Time            `json:"due_date" validate:"omitempty,future_date"`
	TotalPoints *int                  `json:"total_points" validate:"omitempty,min=1,max=1000"`
	IsActive    *bool                 `json:"is_active"`
	Questions   []TaskQuestionRequest `json:"questions" validate:"omitempty,dive"`
}

type SubmissionCreateRequest struct {
	TaskID  string           `json:"task_id" validate:"required"`
	Answers []map[string]any `json:"answers" validate:"omitempty"`
}

type SubmissionGradeRequest struct {
	Grade    float64 `json:"grade" validate:"min=0,max=1000"`
	Feedback *string `json:"feedback" validate:"omitempty,max=2000"`
}

type GradeCreateRequest struct {
	StudentID string           `json:"student_id" validate:"required"`
	SubjectID string           `json:"subject_id" validate:"required"`
	TaskID    *string          `json:"task_id"`
	Value     float64          `json:"value" validate:"min=0"`
	MaxValue  float64          `json:"max_value" validate:"required,gt=0"`
	Period    string           `json:"period" validate:"required,max=50"`
	Type      models.GradeType `json:"type" validate:"omitempty,grade_type"`
}

type GradeUpdateRequest struct {
	Value    *float64 `json:"value" validate:"omitempty,min=0"`
	MaxValue *float64 `json:"max_value" validate:"omitempty,gt=0"`
	Period   *string  `json:"period" validate:"omitempty,max=50"`
}
