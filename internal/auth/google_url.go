package auth

import (
	"strings"

	"qrreview-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type GoogleReviewURLRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// -------------------------------------------------
// POST /api/google-reviewurl
// -------------------------------------------------
func SetGoogleReviewURLHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return err
		}

		var body GoogleReviewURLRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		body.URL = strings.TrimSpace(body.URL)
		if body.URL == "" {
			return fiber.NewError(fiber.StatusBadRequest, "url zorunlu")
		}

		if err := db.Model(&models.User{}).Where("id = ?", user.ID).
			Update("google_review_url", body.URL).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "URL güncellenemedi")
		}

		return c.JSON(fiber.Map{
			"message":           "Google review URL güncellendi",
			"google_review_url": body.URL,
		})
	}
}

// -------------------------------------------------
// GET /api/google-reviewurl
// -------------------------------------------------
func GetGoogleReviewURLHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return err
		}

		var fresh models.User
		if err := db.Select("id", "google_review_url").First(&fresh, user.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}

		return c.JSON(fiber.Map{"google_review_url": fresh.GoogleReviewURL})
	}
}
