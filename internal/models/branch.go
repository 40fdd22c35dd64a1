package models

import "time"

type BranchType string

const (
	BranchTypeRestaurant BranchType = "restaurant"
	BranchTypeHotel      BranchType = "hotel"
	BranchTypeShop       BranchType = "shop"
	BranchTypeOffice     BranchType = "office"
	BranchTypeOther      BranchType = "other"
)

type Branch struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null"`
	Address   string `gorm:"size:255;not null"`
	CreatedBy uint   `gorm:"index;not null"` // sahibi olan kullanıcı

	// Şube oluşturulurken üretilen QR (PNG data URI)
	QRCode string `gorm:"type:text"`

	// Geri bildirim istatistikleri (feedback yazımında atomik güncellenir)
	TotalReviews  int64   `gorm:"not null;default:0"`
	AverageRating float64 `gorm:"not null;default:0"`
	IsActive      bool    `gorm:"not null;default:true"`

	// Yönlendirme URL'leri
	GoogleReviewURL string `gorm:"size:500"`
	FacebookPageURL string `gorm:"size:500"`

	BusinessHours string     `gorm:"size:255"`
	BranchType    BranchType `gorm:"size:20;not null;default:other"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
