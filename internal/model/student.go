package model

import (
	"time"

	"github.com/google/uuid"
)

// Title is the honorific a student registers with
type Title string

const (
	TitleMr   Title = "MR"
	TitleMrs  Title = "MRS"
	TitleMiss Title = "MISS"
	TitleMs   Title = "MS"
)

// Valid reports whether t is one of the known titles
func (t Title) Valid() bool {
	switch t {
	case TitleMr, TitleMrs, TitleMiss, TitleMs:
		return true
	}
	return false
}

// Gender of a student
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// Valid reports whether g is one of the known genders
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Student represents a registered student. SchoolID is nil when the student
// has no school, either by reassignment or because their school was deactivated.
type Student struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Title          Title     `json:"title" gorm:"type:varchar(4);not null"`
	FirstName      string    `json:"first_name" gorm:"type:varchar(20);index;not null"`
	LastName       string    `json:"last_name" gorm:"type:varchar(20);index;not null"`
	Age            int       `json:"age" gorm:"not null"`
	Gender         Gender    `json:"gender" gorm:"type:varchar(6);not null"`
	Identification uuid.UUID `json:"identification" gorm:"type:uuid;uniqueIndex;not null;<-:create"`
	SchoolID       *uint     `json:"school" gorm:"index"`
	IsActive       bool      `json:"is_active" gorm:"not null;default:true;index"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"index"`

	School *School `json:"school_details" gorm:"foreignKey:SchoolID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName overrides the pluralised table name
func (Student) TableName() string {
	return "student"
}

func (s Student) String() string {
	return s.FirstName + " - " + s.LastName
}
