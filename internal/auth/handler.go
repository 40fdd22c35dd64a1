package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"qrreview-backend/internal/config"
	"qrreview-backend/internal/mail"
	"qrreview-backend/internal/models"
	"qrreview-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type SignupRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type UserResponse struct {
	ID              uint    `json:"id"`
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	GoogleReviewURL *string `json:"google_review_url"`
}

func userResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		GoogleReviewURL: user.GoogleReviewURL,
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// 6 haneli sayısal OTP
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func setSessionCookie(c *fiber.Ctx, token string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode, // frontend ayrı origin'de
	})
}

func clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}

// -------------------------------------------------
// POST /api/signup
// -------------------------------------------------
func SignupHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SignupRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		body.Email = normalizeEmail(body.Email)
		if err := validation.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Kullanıcı adı, email ve şifre (min 6) zorunlu")
		}

		var count int64
		db.Model(&models.User{}).Where("email = ?", body.Email).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Bu email ile kayıtlı kullanıcı zaten var")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		user := models.User{
			Username:     body.Username,
			Email:        body.Email,
			PasswordHash: string(hash),
		}
		if err := db.Create(&user).Error; err != nil {
			// Varlık kontrolü ile insert arasındaki yarışta unique index devreye girer
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusBadRequest, "Bu email ile kayıtlı kullanıcı zaten var")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Kayıt başarılı",
			"user":    userResponse(&user),
		})
	}
}

// -------------------------------------------------
// POST /api/login
// -------------------------------------------------
func LoginHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		body.Email = normalizeEmail(body.Email)
		if err := validation.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Email ve şifre zorunlu")
		}

		var user models.User
		if err := db.Where("email = ?", body.Email).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Email veya şifre hatalı")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Email veya şifre hatalı")
		}

		ttl := time.Duration(cfg.TokenTTLHours) * time.Hour
		token, err := GenerateSessionToken(cfg.JWTSecret, user.ID, ttl)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token oluşturulamadı")
		}
		setSessionCookie(c, token, ttl)

		return c.JSON(fiber.Map{
			"message": "Giriş başarılı",
			"user":    userResponse(&user),
		})
	}
}

// -------------------------------------------------
// POST /api/logout
// -------------------------------------------------
func LogoutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		clearCookie(c, SessionCookieName)
		return c.JSON(fiber.Map{"message": "Çıkış yapıldı"})
	}
}

// -------------------------------------------------
// GET /api/checkAuth
// -------------------------------------------------
func CheckAuthHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"message": "Oturum geçerli",
			"user":    userResponse(user),
		})
	}
}

// -------------------------------------------------
// POST /api/forgot-password
// -------------------------------------------------
func ForgotPasswordHandler(db *gorm.DB, cfg *config.Config, sender mail.Sender) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ForgotPasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		body.Email = normalizeEmail(body.Email)
		if err := validation.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Email zorunlu")
		}

		var user models.User
		if err := db.Where("email = ?", body.Email).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}

		otp, err := generateOTP()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "OTP üretilemedi")
		}

		otpToken, err := GenerateOTPToken(cfg.JWTSecret, user.ID, otp)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token oluşturulamadı")
		}

		if err := sender.Send(user.Email, "Şifre Sıfırlama Kodu", "Doğrulama kodunuz: "+otp); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mail gönderilemedi")
		}

		c.Cookie(&fiber.Cookie{
			Name:     OTPCookieName,
			Value:    otpToken,
			Path:     "/",
			Expires:  time.Now().Add(5 * time.Minute),
			HTTPOnly: true,
			Secure:   true,
			SameSite: fiber.CookieSameSiteStrictMode,
		})

		return c.JSON(fiber.Map{"message": "Doğrulama kodu email adresinize gönderildi"})
	}
}

// -------------------------------------------------
// POST /api/reset-password
// -------------------------------------------------
func ResetPasswordHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ResetPasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if err := validation.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "OTP (6 haneli) ve yeni şifre (min 6) zorunlu")
		}

		otpToken := c.Cookies(OTPCookieName)
		if otpToken == "" {
			return fiber.NewError(fiber.StatusBadRequest, "OTP süresi dolmuş veya bulunamadı")
		}

		claims, err := ParseOTPToken(cfg.JWTSecret, otpToken)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "OTP süresi dolmuş veya geçersiz")
		}
		if claims.OTP != body.OTP {
			return fiber.NewError(fiber.StatusBadRequest, "Doğrulama kodu hatalı")
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}
		if err := db.Model(&user).Update("password_hash", string(hash)).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre güncellenemedi")
		}

		clearCookie(c, OTPCookieName)
		return c.JSON(fiber.Map{"message": "Şifre sıfırlandı. Yeni şifrenizle giriş yapabilirsiniz."})
	}
}

// -------------------------------------------------
// PUT /api/profile
// -------------------------------------------------
func UpdateProfileHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return err
		}

		var body UpdateProfileRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		updates := map[string]any{}
		if body.Username != nil && strings.TrimSpace(*body.Username) != "" {
			updates["username"] = strings.TrimSpace(*body.Username)
		}
		if body.Email != nil {
			email := normalizeEmail(*body.Email)
			if email == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Email boş olamaz")
			}
			var count int64
			db.Model(&models.User{}).Where("email = ? AND id <> ?", email, user.ID).Count(&count)
			if count > 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Bu email başka bir hesapta kullanılıyor")
			}
			updates["email"] = email
		}
		if len(updates) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Güncellenecek alan yok")
		}

		if err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusBadRequest, "Bu email başka bir hesapta kullanılıyor")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Profil güncellenemedi")
		}

		var updated models.User
		if err := db.First(&updated, user.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Profil okunamadı")
		}
		return c.JSON(fiber.Map{
			"message": "Profil güncellendi",
			"user":    userResponse(&updated),
		})
	}
}

// -------------------------------------------------
// PUT /api/password
// -------------------------------------------------
func ChangePasswordHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return err
		}

		var body ChangePasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if err := validation.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Mevcut şifre ve yeni şifre (min 6) zorunlu")
		}

		// Middleware hash'i yüklemez, burada tekrar okunur
		var full models.User
		if err := db.First(&full, user.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı okunamadı")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(full.PasswordHash), []byte(body.CurrentPassword)); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Mevcut şifre hatalı")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}
		if err := db.Model(&full).Update("password_hash", string(hash)).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre güncellenemedi")
		}

		return c.JSON(fiber.Map{"message": "Şifre güncellendi"})
	}
}

// -------------------------------------------------
// DELETE /api/account
// -------------------------------------------------
func DeleteAccountHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return err
		}

		// Şube ve feedback kayıtları bilinçli olarak silinmez (mevcut davranış)
		if err := db.Delete(&models.User{}, user.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hesap silinemedi")
		}

		clearCookie(c, SessionCookieName)
		return c.JSON(fiber.Map{"message": "Hesap silindi"})
	}
}
