package models

import "time"

// Subject represents a course offering students can enroll in
type Subject struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string `gorm:"size:255;not null;uniqueIndex"`
	Description string `gorm:"size:512"`
	CreatedBy   uint   `gorm:"index;not null"` // user id of the creator
	// Enrollments is a one-to-many relation from Subject to Enrollment
	Enrollments []Enrollment `gorm:"foreignKey:SubjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
