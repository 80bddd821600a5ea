package models

import (
	"time"
)

// User model. Accounts created through Google OAuth have an empty PasswordHash
// and can only sign in through the provider.
type User struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time `gorm:"index"`
	Name         string     `gorm:"size:255;not null"`
	Email        string     `gorm:"size:255;not null;unique"`
	PasswordHash []byte
	Enrollments  []Enrollment `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
