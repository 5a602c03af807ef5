package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the authenticated principal held by the session. Identity data is
// owned by Casdoor; this service keeps a read model for display and grading.
type User struct {
	ID        string   `json:"id" gorm:"primaryKey;size:255"`
	Email     string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	FirstName string   `json:"first_name" gorm:"size:100"`
	LastName  string   `json:"last_name" gorm:"size:100"`
	Role      UserRole `json:"role" gorm:"-"`

	InstitutionID *string      `json:"institution_id" gorm:"size:255;index"`
	Institution   *Institution `json:"institution,omitempty" gorm:"foreignKey:InstitutionID"`

	// Relevant for students only.
	SchoolGradeID *string        `json:"school_grade_id" gorm:"size:255"`
	SchoolGrade   *AcademicGrade `json:"school_grade,omitempty" gorm:"foreignKey:SchoolGradeID"`

	// Profile info
	AvatarURL *string `json:"avatar_url" gorm:"size:500"`

	// Status. Not consulted by the route guard; display only.
	IsActive bool `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// FullName joins the name parts for display.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// UserUpdate carries a shallow profile patch. Nil fields are left untouched.
type UserUpdate struct {
	Email         *string `json:"email"`
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	AvatarURL     *string `json:"avatar_url"`
	InstitutionID *string `json:"institution_id"`
	SchoolGradeID *string `json:"school_grade_id"`
}

// Apply merges the non-nil fields into the user.
func (p UserUpdate) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.AvatarURL != nil {
		u.AvatarURL = p.AvatarURL
	}
	if p.InstitutionID != nil {
		u.InstitutionID = p.InstitutionID
	}
	if p.SchoolGradeID != nil {
		u.SchoolGradeID = p.SchoolGradeID
	}
}
