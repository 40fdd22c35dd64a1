package branch

import (
	"fmt"
	"strings"

	"qrreview-backend/internal/audit"
	"qrreview-backend/internal/auth"
	"qrreview-backend/internal/config"
	"qrreview-backend/internal/models"
	"qrreview-backend/internal/qr"
	"qrreview-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateBranchRequest struct {
	Name            string  `json:"name" validate:"required,max=100"`
	Address         string  `json:"address" validate:"required,max=255"`
	GoogleReviewURL *string `json:"google_review_url"`
	FacebookPageURL *string `json:"facebook_page_url"`
	BusinessHours   *string `json:"business_hours"`
	BranchType      *string `json:"branch_type"`
}

type UpdateBranchRequest struct {
	Name            *string `json:"name"`
	Address         *string `json:"address"`
	GoogleReviewURL *string `json:"google_review_url"`
	FacebookPageURL *string `json:"facebook_page_url"`
	BusinessHours   *string `json:"business_hours"`
	BranchType      *string `json:"branch_type"`
	IsActive        *bool   `json:"is_active"`
}

type BranchResponse struct {
	ID              uint    `json:"id"`
	Name            string  `json:"name"`
	Address         string  `json:"address"`
	QRCode          string  `json:"qr_code"`
	ReviewURL       string  `json:"review_url"`
	TotalReviews    int64   `json:"total_reviews"`
	AverageRating   float64 `json:"average_rating"`
	IsActive        bool    `json:"is_active"`
	GoogleReviewURL string  `json:"google_review_url"`
	FacebookPageURL string  `json:"facebook_page_url"`
	BusinessHours   string  `json:"business_hours"`
	BranchType      string  `json:"branch_type"`
	CreatedAt       string  `json:"created_at"`
}

func branchResponse(b *models.Branch, frontendBaseURL string) BranchResponse {
	return BranchResponse{
		ID:              b.ID,
		Name:            b.Name,
		Address:         b.Address,
		QRCode:          b.QRCode,
		ReviewURL:       qr.ReviewURL(frontendBaseURL, b.ID),
		TotalReviews:    b.TotalReviews,
		AverageRating:   b.AverageRating,
		IsActive:        b.IsActive,
		GoogleReviewURL: b.GoogleReviewURL,
		FacebookPageURL: b.FacebookPageURL,
		BusinessHours:   b.BusinessHours,
		BranchType:      string(b.BranchType),
		CreatedAt:       b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func parseBranchID(c *fiber.Ctx) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Şube id geçersiz")
	}
	return id, nil
}

func validBranchType(t string) bool {
	switch models.BranchType(t) {
	case models.BranchTypeRestaurant, models.BranchTypeHotel, models.BranchTypeShop,
		models.BranchTypeOffice, models.BranchTypeOther:
		return true
	}
	return false
}

// Sahiplik kontrolü ile şube yükler
func findOwnedBranch(db *gorm.DB, id, ownerID uint) (*models.Branch, error) {
	var b models.Branch
	if err := db.Where("id = ? AND created_by = ?", id, ownerID).First(&b).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
	}
	return &b, nil
}

// -------------------------------------------------
// POST /api/branches
// -------------------------------------------------
func CreateBranchHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body CreateBranchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}
		body.Name = strings.TrimSpace(body.Name)
		body.Address = strings.TrimSpace(body.Address)
		if err := validation.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Şube adı ve adres zorunlu")
		}

		branchType := models.BranchTypeOther
		if body.BranchType != nil && *body.BranchType != "" {
			if !validBranchType(*body.BranchType) {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz şube tipi (restaurant|hotel|shop|office|other)")
			}
			branchType = models.BranchType(*body.BranchType)
		}

		b := models.Branch{
			Name:       body.Name,
			Address:    body.Address,
			CreatedBy:  user.ID,
			IsActive:   true,
			BranchType: branchType,
		}
		if body.GoogleReviewURL != nil {
			b.GoogleReviewURL = strings.TrimSpace(*body.GoogleReviewURL)
		}
		if body.FacebookPageURL != nil {
			b.FacebookPageURL = strings.TrimSpace(*body.FacebookPageURL)
		}
		if body.BusinessHours != nil {
			b.BusinessHours = strings.TrimSpace(*body.BusinessHours)
		}

		// QR içeriği şube id'sine ihtiyaç duyar, create + update tek transaction'da
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&b).Error; err != nil {
				return err
			}
			dataURI, err := qr.DataURI(qr.ReviewURL(cfg.FrontendBaseURL, b.ID))
			if err != nil {
				return err
			}
			b.QRCode = dataURI
			return tx.Model(&b).Update("qr_code", dataURI).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şube oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(branchResponse(&b, cfg.FrontendBaseURL))
	}
}

// -------------------------------------------------
// GET /api/branches
// -------------------------------------------------
func ListBranchesHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var branches []models.Branch
		if err := db.Where("created_by = ?", user.ID).
			Order("created_at DESC").Find(&branches).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şubeler listelenemedi")
		}

		out := make([]BranchResponse, 0, len(branches))
		for i := range branches {
			out = append(out, branchResponse(&branches[i], cfg.FrontendBaseURL))
		}
		return c.JSON(fiber.Map{"branches": out})
	}
}

// -------------------------------------------------
// GET /api/branches/:id
// -------------------------------------------------
func GetBranchHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := parseBranchID(c)
		if err != nil {
			return err
		}

		b, err := findOwnedBranch(db, id, user.ID)
		if err != nil {
			return err
		}
		return c.JSON(branchResponse(b, cfg.FrontendBaseURL))
	}
}

// -------------------------------------------------
// PUT /api/branches/:id
// -------------------------------------------------
func UpdateBranchHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := parseBranchID(c)
		if err != nil {
			return err
		}

		b, err := findOwnedBranch(db, id, user.ID)
		if err != nil {
			return err
		}

		var body UpdateBranchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		updates := map[string]any{}
		if body.Name != nil && strings.TrimSpace(*body.Name) != "" {
			updates["name"] = strings.TrimSpace(*body.Name)
		}
		if body.Address != nil && strings.TrimSpace(*body.Address) != "" {
			updates["address"] = strings.TrimSpace(*body.Address)
		}
		if body.GoogleReviewURL != nil {
			updates["google_review_url"] = strings.TrimSpace(*body.GoogleReviewURL)
		}
		if body.FacebookPageURL != nil {
			updates["facebook_page_url"] = strings.TrimSpace(*body.FacebookPageURL)
		}
		if body.BusinessHours != nil {
			updates["business_hours"] = strings.TrimSpace(*body.BusinessHours)
		}
		if body.BranchType != nil {
			if !validBranchType(*body.BranchType) {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz şube tipi (restaurant|hotel|shop|office|other)")
			}
			updates["branch_type"] = *body.BranchType
		}
		if body.IsActive != nil {
			updates["is_active"] = *body.IsActive
		}
		if len(updates) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Güncellenecek alan yok")
		}

		if err := db.Model(b).Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şube güncellenemedi")
		}

		var updated models.Branch
		if err := db.First(&updated, b.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şube okunamadı")
		}
		return c.JSON(branchResponse(&updated, cfg.FrontendBaseURL))
	}
}

// -------------------------------------------------
// DELETE /api/branches/:id
// -------------------------------------------------
func DeleteBranchHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := parseBranchID(c)
		if err != nil {
			return err
		}

		b, err := findOwnedBranch(db, id, user.ID)
		if err != nil {
			return err
		}

		// Feedback kayıtları bilinçli olarak yerinde bırakılır (mevcut davranış)
		if err := db.Delete(&models.Branch{}, b.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şube silinemedi")
		}

		_ = audit.WriteLog(db, audit.LogOptions{
			UserID:      user.ID,
			UserName:    user.Username,
			EntityType:  "branch",
			EntityID:    b.ID,
			Action:      models.AuditActionDelete,
			Description: "Şube silindi: " + b.Name,
			Before:      b,
		})

		return c.JSON(fiber.Map{"message": "Şube silindi"})
	}
}

// -------------------------------------------------
// GET /api/branches/:id/public  (geri bildirim formu için, auth yok)
// -------------------------------------------------
func PublicBranchHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseBranchID(c)
		if err != nil {
			return err
		}

		var b models.Branch
		if err := db.First(&b, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
		}

		return c.JSON(fiber.Map{
			"id":                b.ID,
			"name":              b.Name,
			"is_active":         b.IsActive,
			"google_review_url": b.GoogleReviewURL,
			"facebook_page_url": b.FacebookPageURL,
		})
	}
}
