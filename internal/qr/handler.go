package qr

import (
	"fmt"
	"path/filepath"

	"qrreview-backend/internal/auth"
	"qrreview-backend/internal/models"
	"qrreview-backend/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QRImageResponse struct {
	ID        uint   `json:"id"`
	ImageURL  string `json:"image_url"`
	CreatedAt string `json:"created_at"`
}

// -------------------------------------------------
// POST /api/upload-qr  (multipart, alan adı: "qr")
// -------------------------------------------------
func UploadQRHandler(db *gorm.DB, store storage.Uploader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		fileHeader, err := c.FormFile("qr")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya yüklenmedi")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya açılamadı")
		}
		defer file.Close()

		contentType := fileHeader.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		key := fmt.Sprintf("qr/%s%s", uuid.New().String(), filepath.Ext(fileHeader.Filename))
		imageURL, err := store.Upload(c.Context(), key, contentType, file)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yükleme başarısız")
		}

		img := models.QRImage{
			UserID:   user.ID,
			ImageURL: imageURL,
		}
		if err := db.Create(&img).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "QR kaydı oluşturulamadı")
		}

		return c.JSON(fiber.Map{
			"message": "QR yüklendi",
			"url":     imageURL,
		})
	}
}

// -------------------------------------------------
// GET /api/qr  (kullanıcının en güncel QR görseli)
// -------------------------------------------------
func LatestQRHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var img models.QRImage
		if err := db.Where("user_id = ?", user.ID).
			Order("created_at DESC").First(&img).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "QR bulunamadı")
		}

		return c.JSON(fiber.Map{
			"qr": QRImageResponse{
				ID:        img.ID,
				ImageURL:  img.ImageURL,
				CreatedAt: img.CreatedAt.Format("2006-01-02 15:04:05"),
			},
		})
	}
}
