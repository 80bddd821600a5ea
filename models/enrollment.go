package models

import "time"

// Enrollment links a student to a subject. A student may enroll in a subject at most once.
type Enrollment struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	SubjectID uint `gorm:"index;not null;uniqueIndex:idx_subject_student"`
	StudentID uint `gorm:"not null;uniqueIndex:idx_subject_student"` // FK to users.id
}
