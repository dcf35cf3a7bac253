package model

import "time"

// DefaultStudentMaxNumber is the capacity given to a school created without one
const DefaultStudentMaxNumber = 100

// School represents a school that students can be registered to.
// Schools are never hard deleted; deactivation clears IsActive.
type School struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Name             string    `json:"name" gorm:"type:varchar(20);uniqueIndex;not null"`
	Code             string    `json:"code" gorm:"type:varchar(20);not null"`
	Location         string    `json:"location" gorm:"type:varchar(100);index;not null"`
	StudentMaxNumber int       `json:"student_max_number" gorm:"not null;default:100"`
	IsActive         bool      `json:"is_active" gorm:"not null;default:true;index"`
	CreatedAt        time.Time `json:"created_at" gorm:"index"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"index"`
}

// TableName overrides the pluralised table name
func (School) TableName() string {
	return "school"
}

func (s School) String() string {
	return s.Name
}
