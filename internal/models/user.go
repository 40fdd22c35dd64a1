package models

import "time"

type User struct {
	ID              uint    `gorm:"primaryKey"`
	Username        string  `gorm:"size:100;not null"`
	Email           string  `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash    string  `gorm:"size:255;not null"`
	GoogleReviewURL *string `gorm:"size:500"` // Şube bazlı URL yoksa fallback
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
