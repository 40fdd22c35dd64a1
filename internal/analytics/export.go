package analytics

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"qrreview-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Dışa aktarma kolon sırası sabittir
var exportHeader = []string{"id", "branch_name", "rating", "comments", "created_at"}

type exportRow struct {
	ID         uint
	BranchName string
	Rating     int
	Comments   string
	CreatedAt  time.Time
}

func fetchExportRows(db *gorm.DB, userID uint) ([]exportRow, error) {
	var rows []exportRow
	err := db.Raw(`
		SELECT f.id AS id,
		       COALESCE(b.name, '') AS branch_name,
		       f.rating AS rating,
		       f.comments AS comments,
		       f.created_at AS created_at
		FROM feedbacks f
		LEFT JOIN branches b ON b.id = f.branch_id
		WHERE f.user_id = ?
		ORDER BY f.created_at DESC`, userID,
	).Scan(&rows).Error
	return rows, err
}

// -------------------------------------------------
// GET /api/feedback/insights/export/csv
// -------------------------------------------------
func ExportCSVHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		rows, err := fetchExportRows(db, user.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıtlar okunamadı")
		}

		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(exportHeader); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "CSV oluşturulamadı")
		}
		for _, r := range rows {
			record := []string{
				strconv.FormatUint(uint64(r.ID), 10),
				r.BranchName,
				strconv.Itoa(r.Rating),
				r.Comments,
				r.CreatedAt.Format("2006-01-02 15:04:05"),
			}
			if err := w.Write(record); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "CSV oluşturulamadı")
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "CSV oluşturulamadı")
		}

		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="feedback_report.csv"`)
		return c.Send(buf.Bytes())
	}
}

// -------------------------------------------------
// GET /api/feedback/insights/export/xlsx
// -------------------------------------------------
func ExportXLSXHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		rows, err := fetchExportRows(db, user.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıtlar okunamadı")
		}

		f := excelize.NewFile()
		defer f.Close()

		sheet := "Feedback"
		f.SetSheetName("Sheet1", sheet)

		header := make([]any, len(exportHeader))
		for i, h := range exportHeader {
			header[i] = h
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel oluşturulamadı")
		}
		if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
			_ = f.SetRowStyle(sheet, 1, 1, style)
		}

		for i, r := range rows {
			cell := fmt.Sprintf("A%d", i+2)
			record := []any{
				r.ID,
				r.BranchName,
				r.Rating,
				r.Comments,
				r.CreatedAt.Format("2006-01-02 15:04:05"),
			}
			if err := f.SetSheetRow(sheet, cell, &record); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Excel oluşturulamadı")
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel oluşturulamadı")
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="feedback_report.xlsx"`)
		return c.Send(buf.Bytes())
	}
}
