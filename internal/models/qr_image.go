package models

import "time"

// QRImage: kullanıcının yüklediği QR görselinin S3 URL kaydı
type QRImage struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	ImageURL  string `gorm:"size:500;not null"`
	CreatedAt time.Time
}
