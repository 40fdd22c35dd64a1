package audit

import (
	"qrreview-backend/internal/auth"
	"qrreview-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AuditLogResponse struct {
	ID          uint   `json:"id"`
	EntityType  string `json:"entity_type"`
	EntityID    uint   `json:"entity_id"`
	Action      string `json:"action"`
	Description string `json:"description"`
	BeforeData  string `json:"before_data"`
	AfterData   string `json:"after_data"`
	CreatedAt   string `json:"created_at"`
}

// -------------------------------------------------
// GET /api/audit-logs
// -------------------------------------------------
func ListAuditLogsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var logs []models.AuditLog
		if err := db.Where("user_id = ?", user.ID).
			Order("created_at DESC").Limit(200).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıtlar listelenemedi")
		}

		out := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			out = append(out, AuditLogResponse{
				ID:          l.ID,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      string(l.Action),
				Description: l.Description,
				BeforeData:  l.BeforeData,
				AfterData:   l.AfterData,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(fiber.Map{"logs": out})
	}
}
