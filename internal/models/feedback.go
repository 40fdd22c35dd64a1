package models

import "time"

type Feedback struct {
	ID       uint `gorm:"primaryKey"`
	BranchID uint `gorm:"index;not null"` // taranan QR'ın şubesi
	Branch   Branch
	UserID   uint `gorm:"index;not null"` // şubenin sahibi

	Name     string `gorm:"size:100;not null"`
	Email    string `gorm:"size:100;not null"`
	Phone    string `gorm:"size:50"`
	Rating   int    `gorm:"not null"` // 1-5
	Comments string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
