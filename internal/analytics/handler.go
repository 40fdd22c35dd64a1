package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"qrreview-backend/internal/auth"
	"qrreview-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SummaryResponse struct {
	TotalFeedbacks int64   `json:"total_feedbacks"`
	AverageRating  float64 `json:"average_rating"`
}

type DistributionBucket struct {
	Rating int   `json:"rating"`
	Count  int64 `json:"count"`
}

type ActiveBranch struct {
	BranchID       uint    `json:"branch_id"`
	BranchName     string  `json:"branch_name"`
	TotalFeedbacks int64   `json:"total_feedbacks"`
	AverageRating  float64 `json:"average_rating"`
}

type MonthlyTrend struct {
	Month          string  `json:"month"` // "3-2026" biçiminde
	TotalFeedbacks int64   `json:"total_feedbacks"`
	AverageRating  float64 `json:"average_rating"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func parseBranchParam(c *fiber.Ctx) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params("branchId"), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "branchId geçersiz")
	}
	return id, nil
}

func ownedBranch(db *gorm.DB, id, ownerID uint) (*models.Branch, error) {
	var b models.Branch
	if err := db.Where("id = ? AND created_by = ?", id, ownerID).First(&b).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
	}
	return &b, nil
}

// -------------------------------------------------
// GET /api/feedback/analytics/global
// -------------------------------------------------
func GlobalSummaryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var row struct {
			Total int64
			Avg   float64
		}
		if err := db.Raw(
			"SELECT COUNT(*) AS total, COALESCE(AVG(rating), 0) AS avg FROM feedbacks WHERE user_id = ?",
			user.ID,
		).Scan(&row).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İstatistik hesaplanamadı")
		}

		return c.JSON(SummaryResponse{
			TotalFeedbacks: row.Total,
			AverageRating:  round2(row.Avg),
		})
	}
}

// -------------------------------------------------
// GET /api/feedback/analytics/:branchId
// -------------------------------------------------
func BranchSummaryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		branchID, err := parseBranchParam(c)
		if err != nil {
			return err
		}
		if _, err := ownedBranch(db, branchID, user.ID); err != nil {
			return err
		}

		var row struct {
			Total int64
			Avg   float64
		}
		if err := db.Raw(
			"SELECT COUNT(*) AS total, COALESCE(AVG(rating), 0) AS avg FROM feedbacks WHERE branch_id = ?",
			branchID,
		).Scan(&row).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İstatistik hesaplanamadı")
		}

		return c.JSON(fiber.Map{
			"branch_id":       branchID,
			"total_feedbacks": row.Total,
			"average_rating":  round2(row.Avg),
		})
	}
}

// -------------------------------------------------
// GET /api/feedback/insights/distribution/:branchId
// -------------------------------------------------
func RatingDistributionHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		branchID, err := parseBranchParam(c)
		if err != nil {
			return err
		}
		if _, err := ownedBranch(db, branchID, user.ID); err != nil {
			return err
		}

		var rows []struct {
			Rating int
			Count  int64
		}
		if err := db.Raw(
			"SELECT rating, COUNT(*) AS count FROM feedbacks WHERE branch_id = ? GROUP BY rating ORDER BY rating",
			branchID,
		).Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dağılım hesaplanamadı")
		}

		counts := map[int]int64{}
		for _, r := range rows {
			counts[r.Rating] = r.Count
		}

		// Boş puan kovaları sıfırla doldurulur
		distribution := make([]DistributionBucket, 0, 5)
		for rating := 1; rating <= 5; rating++ {
			distribution = append(distribution, DistributionBucket{
				Rating: rating,
				Count:  counts[rating],
			})
		}

		return c.JSON(fiber.Map{
			"branch_id":    branchID,
			"distribution": distribution,
		})
	}
}

// -------------------------------------------------
// GET /api/feedback/insights/active-branches
// -------------------------------------------------
func ActiveBranchesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var rows []struct {
			BranchID       uint
			BranchName     string
			TotalFeedbacks int64
			AvgRating      float64
		}
		if err := db.Raw(`
			SELECT f.branch_id AS branch_id,
			       COALESCE(b.name, '') AS branch_name,
			       COUNT(*) AS total_feedbacks,
			       AVG(f.rating) AS avg_rating
			FROM feedbacks f
			LEFT JOIN branches b ON b.id = f.branch_id
			WHERE f.user_id = ?
			GROUP BY f.branch_id, b.name
			ORDER BY total_feedbacks DESC
			LIMIT 5`, user.ID,
		).Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Aktif şubeler hesaplanamadı")
		}

		out := make([]ActiveBranch, 0, len(rows))
		for _, r := range rows {
			name := r.BranchName
			if name == "" {
				name = "Bilinmeyen" // şube silinmiş olabilir
			}
			out = append(out, ActiveBranch{
				BranchID:       r.BranchID,
				BranchName:     name,
				TotalFeedbacks: r.TotalFeedbacks,
				AverageRating:  round2(r.AvgRating),
			})
		}

		return c.JSON(fiber.Map{"most_active_branches": out})
	}
}

// -------------------------------------------------
// GET /api/feedback/insights/monthly-trends
// -------------------------------------------------
func MonthlyTrendsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		// Ay/yıl kovalaması uygulama tarafında yapılır; tarih fonksiyonları
		// Postgres ve sqlite arasında ortak değil.
		var rows []struct {
			Rating    int
			CreatedAt time.Time
		}
		if err := db.Model(&models.Feedback{}).
			Select("rating", "created_at").
			Where("user_id = ?", user.ID).
			Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Trendler hesaplanamadı")
		}

		type bucket struct {
			year, month int
			total       int64
			sum         int64
		}
		buckets := map[int]*bucket{}
		for _, r := range rows {
			key := r.CreatedAt.Year()*100 + int(r.CreatedAt.Month())
			b, ok := buckets[key]
			if !ok {
				b = &bucket{year: r.CreatedAt.Year(), month: int(r.CreatedAt.Month())}
				buckets[key] = b
			}
			b.total++
			b.sum += int64(r.Rating)
		}

		keys := make([]int, 0, len(buckets))
		for k := range buckets {
			keys = append(keys, k)
		}
		sort.Ints(keys)

		trends := make([]MonthlyTrend, 0, len(keys))
		for _, k := range keys {
			b := buckets[k]
			trends = append(trends, MonthlyTrend{
				Month:          fmt.Sprintf("%d-%d", b.month, b.year),
				TotalFeedbacks: b.total,
				AverageRating:  round2(float64(b.sum) / float64(b.total)),
			})
		}

		return c.JSON(fiber.Map{"trends": trends})
	}
}
