package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TaskType string

const (
	TaskQuiz       TaskType = "quiz"
	TaskFileUpload TaskType = "file_upload"
	TaskBoth       TaskType = "both"
)

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionFillBlank      QuestionType = "fill_blank"
)

// Task is an assignment (tarea) created by a teacher for a subject.
// Quiz questions are stored as a JSON document; their shape varies by type.
type Task struct {
	ID          string   `json:"id" gorm:"primaryKey;size:255"`
	Title       string   `json:"title" gorm:"not null;size:200"`
	Description string   `json:"description" gorm:"size:2000"`
	Type        TaskType `json:"type" gorm:"not null;size:20;default:quiz"`

	SubjectID string `json:"subject_id" gorm:"not null;size:255;index"`
	TeacherID string `json:"teacher_id" gorm:"not null;size:255;index"`

	DueDate     *time.Time     `json:"due_date"`
	TotalPoints int            `json:"total_points" gorm:"default:100"`
	Questions   datatypes.JSON `json:"questions,omitempty"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`

	Submissions []Submission `json:"submissions,omitempty" gorm:"foreignKey:TaskID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Task) TableName() string {
	return "tasks"
}

type SubmissionStatus string

const (
	SubmissionPending SubmissionStatus = "pending"
	SubmissionGraded  SubmissionStatus = "graded"
	SubmissionLate    SubmissionStatus = "late"
)

type Submission struct {
	ID        string `json:"id" gorm:"primaryKey;size:255"`
	TaskID    string `json:"task_id" gorm:"not null;size:255;index"`
	StudentID string `json:"student_id" gorm:"not null;size:255;index"`

	Answers     datatypes.JSON   `json:"answers,omitempty"`
	SubmittedAt time.Time        `json:"submitted_at"`
	Grade       *float64         `json:"grade"`
	Feedback    *string          `json:"feedback" gorm:"size:2000"`
	Status      SubmissionStatus `json:"status" gorm:"size:20;default:pending"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Submission) TableName() string {
	return "submissions"
}

// TaskQuestion is the element shape of Task.Questions.
type TaskQuestion struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	Question      string       `json:"question"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer"`
	Points        int          `json:"points"`
}
