package auth

import (
	"qrreview-backend/internal/config"
	"qrreview-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	SessionCookieName = "token"
	OTPCookieName     = "otpToken"

	ctxUserKey = "current_user"
)

// CookieAuth: session cookie'deki token'ı doğrular, kullanıcıyı yükler ve
// context'e ekler. Şifre hash'i hiçbir zaman context'e taşınmaz.
func CookieAuth(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Cookies(SessionCookieName)
		if tokenStr == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Oturum bulunamadı")
		}

		claims, err := ParseSessionToken(cfg.JWTSecret, tokenStr)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Geçersiz veya süresi dolmuş oturum")
		}

		var user models.User
		if err := db.Select("id", "username", "email", "google_review_url", "created_at", "updated_at").
			First(&user, claims.UserID).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Kullanıcı bulunamadı")
		}

		c.Locals(ctxUserKey, &user)
		return c.Next()
	}
}

// CurrentUser: CookieAuth'un eklediği kullanıcıyı döndürür.
func CurrentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals(ctxUserKey).(*models.User)
	if !ok || user == nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Kullanıcı bilgisi alınamadı")
	}
	return user, nil
}
