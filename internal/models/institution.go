package models

import (
	"time"

	"gorm.io/gorm"
)

type Institution struct {
	ID       string `json:"id" gorm:"primaryKey;size:255"`
	Name     string `json:"name" gorm:"not null;size:200"`
	Address  string `json:"address" gorm:"size:300"`
	Phone    string `json:"phone" gorm:"size:50"`
	Email    string `json:"email" gorm:"size:255"`
	Director string `json:"director" gorm:"size:100"`
	IsActive bool   `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Institution) TableName() string {
	return "institutions"
}

// AcademicGrade is a class/grade level within an institution (e.g. "7th grade").
type AcademicGrade struct {
	ID            string  `json:"id" gorm:"primaryKey;size:255"`
	Name          string  `json:"name" gorm:"not null;size:100"`
	Description   string  `json:"description" gorm:"size:300"`
	Level         int     `json:"level" gorm:"not null"`
	InstitutionID *string `json:"institution_id" gorm:"size:255;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AcademicGrade) TableName() string {
	return "academic_grades"
}
