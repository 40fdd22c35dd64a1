package feedback

import (
	"errors"
	"fmt"
	"strings"

	"qrreview-backend/internal/audit"
	"qrreview-backend/internal/auth"
	"qrreview-backend/internal/models"
	"qrreview-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SubmitFeedbackRequest struct {
	BranchID uint   `json:"branchId" validate:"required"`
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"max=50"`
	Rating   int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comments string `json:"comments"`
}

type UpdateFeedbackRequest struct {
	Rating   *int    `json:"rating"`
	Comments *string `json:"comments"`
}

type FeedbackResponse struct {
	ID         uint   `json:"id"`
	BranchID   uint   `json:"branch_id"`
	BranchName string `json:"branch_name"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Rating     int    `json:"rating"`
	Comments   string `json:"comments"`
	CreatedAt  string `json:"created_at"`
}

func feedbackResponse(f *models.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:         f.ID,
		BranchID:   f.BranchID,
		BranchName: f.Branch.Name,
		Name:       f.Name,
		Email:      f.Email,
		Phone:      f.Phone,
		Rating:     f.Rating,
		Comments:   f.Comments,
		CreatedAt:  f.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func parseFeedbackID(c *fiber.Ctx) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Feedback id geçersiz")
	}
	return id, nil
}

// Şube istatistiklerini feedback satırlarından yeniden hesaplar
// (düzenleme/silme sonrası; şube silinmişse sessizce geçilir).
func recomputeBranchStats(tx *gorm.DB, branchID uint) error {
	var row struct {
		Total int64
		Avg   float64
	}
	if err := tx.Raw(
		"SELECT COUNT(*) AS total, COALESCE(AVG(rating), 0) AS avg FROM feedbacks WHERE branch_id = ?",
		branchID,
	).Scan(&row).Error; err != nil {
		return err
	}

	res := tx.Model(&models.Branch{}).Where("id = ?", branchID).Updates(map[string]any{
		"total_reviews":  row.Total,
		"average_rating": row.Avg,
	})
	return res.Error
}

// -------------------------------------------------
// POST /api/feedback  (public, QR formundan gelir)
// -------------------------------------------------
func SubmitFeedbackHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SubmitFeedbackRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		body.Name = strings.TrimSpace(body.Name)
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if err := validation.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "branchId, isim, email ve puan (1-5) zorunlu")
		}

		var b models.Branch
		if err := db.First(&b, body.BranchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Şube okunamadı")
		}

		fb := models.Feedback{
			BranchID: b.ID,
			UserID:   b.CreatedBy,
			Name:     body.Name,
			Email:    body.Email,
			Phone:    strings.TrimSpace(body.Phone),
			Rating:   body.Rating,
			Comments: strings.TrimSpace(body.Comments),
		}

		// Insert + istatistik güncellemesi tek transaction'da. Ortalama tek bir
		// SQL UPDATE ile güncellenir; SET ifadeleri satırın eski değerlerini
		// okuduğu için eşzamanlı gönderimlerde kayıp güncelleme olmaz.
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&fb).Error; err != nil {
				return err
			}
			return tx.Model(&models.Branch{}).Where("id = ?", b.ID).Updates(map[string]any{
				"total_reviews":  gorm.Expr("total_reviews + 1"),
				"average_rating": gorm.Expr("(average_rating * total_reviews + ?) / (total_reviews + 1)", body.Rating),
			}).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Feedback kaydedilemedi")
		}

		// Yüksek puan dış platforma yönlendirilir
		if body.Rating >= 4 {
			link := b.GoogleReviewURL
			if link == "" {
				var owner models.User
				if err := db.Select("google_review_url").First(&owner, b.CreatedBy).Error; err == nil && owner.GoogleReviewURL != nil {
					link = *owner.GoogleReviewURL
				}
			}
			return c.Status(fiber.StatusCreated).JSON(fiber.Map{
				"message":          "Google yorum sayfasına yönlendiriliyorsunuz",
				"redirect":         true,
				"googleReviewLink": link,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":  "Geri bildiriminiz kaydedildi. Teşekkürler!",
			"redirect": false,
		})
	}
}

// -------------------------------------------------
// GET /api/feedback  [?branch_id=1]
// -------------------------------------------------
func ListFeedbackHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		q := db.Preload("Branch").Where("user_id = ?", user.ID)
		if bidStr := c.Query("branch_id"); bidStr != "" {
			var bid uint
			if _, err := fmt.Sscan(bidStr, &bid); err != nil || bid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "branch_id geçersiz")
			}
			q = q.Where("branch_id = ?", bid)
		}

		var list []models.Feedback
		if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Feedback listelenemedi")
		}

		out := make([]FeedbackResponse, 0, len(list))
		for i := range list {
			out = append(out, feedbackResponse(&list[i]))
		}
		return c.JSON(fiber.Map{"feedbacks": out})
	}
}

// -------------------------------------------------
// PUT /api/feedback/:id
// -------------------------------------------------
func UpdateFeedbackHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := parseFeedbackID(c)
		if err != nil {
			return err
		}

		var fb models.Feedback
		if err := db.Where("id = ? AND user_id = ?", id, user.ID).First(&fb).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Feedback bulunamadı")
		}
		before := fb

		var body UpdateFeedbackRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		updates := map[string]any{}
		if body.Rating != nil {
			if *body.Rating < 1 || *body.Rating > 5 {
				return fiber.NewError(fiber.StatusBadRequest, "Puan 1-5 aralığında olmalı")
			}
			updates["rating"] = *body.Rating
		}
		if body.Comments != nil {
			updates["comments"] = strings.TrimSpace(*body.Comments)
		}
		if len(updates) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Güncellenecek alan yok")
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&fb).Updates(updates).Error; err != nil {
				return err
			}
			if body.Rating != nil {
				return recomputeBranchStats(tx, fb.BranchID)
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Feedback güncellenemedi")
		}

		var updated models.Feedback
		if err := db.Preload("Branch").First(&updated, fb.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Feedback okunamadı")
		}

		_ = audit.WriteLog(db, audit.LogOptions{
			UserID:      user.ID,
			UserName:    user.Username,
			EntityType:  "feedback",
			EntityID:    fb.ID,
			Action:      models.AuditActionUpdate,
			Description: "Feedback düzenlendi",
			Before:      before,
			After:       updated,
		})

		return c.JSON(fiber.Map{"feedback": feedbackResponse(&updated)})
	}
}

// -------------------------------------------------
// DELETE /api/feedback/:id
// -------------------------------------------------
func DeleteFeedbackHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := parseFeedbackID(c)
		if err != nil {
			return err
		}

		var fb models.Feedback
		if err := db.Where("id = ? AND user_id = ?", id, user.ID).First(&fb).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Feedback bulunamadı")
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&models.Feedback{}, fb.ID).Error; err != nil {
				return err
			}
			return recomputeBranchStats(tx, fb.BranchID)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Feedback silinemedi")
		}

		_ = audit.WriteLog(db, audit.LogOptions{
			UserID:      user.ID,
			UserName:    user.Username,
			EntityType:  "feedback",
			EntityID:    fb.ID,
			Action:      models.AuditActionDelete,
			Description: "Feedback silindi",
			Before:      fb,
		})

		return c.JSON(fiber.Map{"message": "Feedback silindi"})
	}
}
