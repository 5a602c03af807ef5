package models

import (
	"time"

	"gorm.io/gorm"
)

type GradeType string

const (
	GradeAssignment    GradeType = "assignment"
	GradeExam          GradeType = "exam"
	GradeParticipation GradeType = "participation"
)

// Grade is a recorded mark (nota) for a student in a subject and period.
type Grade struct {
	ID        string  `json:"id" gorm:"primaryKey;size:255"`
	StudentID string  `json:"student_id" gorm:"not null;size:255;index:idx_grades_student_subject"`
	SubjectID string  `json:"subject_id" gorm:"not null;size:255;index:idx_grades_student_subject"`
	TaskID    *string `json:"task_id" gorm:"size:255;index"`

	Value    float64   `json:"value" gorm:"not null"`
	MaxValue float64   `json:"max_value" gorm:"not null;default:100"`
	Period   string    `json:"period" gorm:"size:50;index"`
	Type     GradeType `json:"type" gorm:"size:20;default:assignment"`

	RecordedBy string    `json:"recorded_by" gorm:"size:255"`
	Date       time.Time `json:"date"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Grade) TableName() string {
	return "grades"
}
