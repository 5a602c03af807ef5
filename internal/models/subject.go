package models

import (
	"time"

	"gorm.io/gorm"
)

type Subject struct {
	ID          string `json:"id" gorm:"primaryKey;size:255"`
	Name        string `json:"name" gorm:"not null;size:200"`
	Description string `json:"description" gorm:"size:1000"`
	GradeLevel  string `json:"grade_level" gorm:"size:100;index"`
	Color       string `json:"color" gorm:"size:20"`

	TeacherID     string  `json:"teacher_id" gorm:"not null;size:255;index"`
	InstitutionID *string `json:"institution_id" gorm:"size:255;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Subject) TableName() string {
	return "subjects"
}
