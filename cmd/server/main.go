package main

import (
	"context"
	"log"
	"strings"

	"qrreview-backend/internal/analytics"
	"qrreview-backend/internal/audit"
	"qrreview-backend/internal/auth"
	"qrreview-backend/internal/branch"
	"qrreview-backend/internal/config"
	"qrreview-backend/internal/database"
	"qrreview-backend/internal/feedback"
	"qrreview-backend/internal/mail"
	"qrreview-backend/internal/qr"
	"qrreview-backend/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	db := database.Init(cfg)
	mailer := mail.New(cfg)

	store, err := storage.NewS3(context.Background(), cfg)
	if err != nil {
		log.Fatalf("S3 istemcisi oluşturulamadı: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(corsOrigins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: true, // cookie'ler için zorunlu
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/signup", auth.SignupHandler(db))
	api.Post("/login", auth.LoginHandler(db, cfg))
	api.Post("/logout", auth.LogoutHandler())
	api.Post("/forgot-password", auth.ForgotPasswordHandler(db, cfg, mailer))
	api.Post("/reset-password", auth.ResetPasswordHandler(db, cfg))

	// Public geri bildirim formu
	api.Get("/branches/:id/public", branch.PublicBranchHandler(db))
	api.Post("/feedback", feedback.SubmitFeedbackHandler(db))

	// Protected
	protected := api.Group("")
	protected.Use(auth.CookieAuth(db, cfg))

	protected.Get("/checkAuth", auth.CheckAuthHandler())
	protected.Put("/profile", auth.UpdateProfileHandler(db))
	protected.Put("/password", auth.ChangePasswordHandler(db))
	protected.Delete("/account", auth.DeleteAccountHandler(db))
	protected.Get("/google-reviewurl", auth.GetGoogleReviewURLHandler(db))
	protected.Post("/google-reviewurl", auth.SetGoogleReviewURLHandler(db))

	// Şube / QR yönetimi
	protected.Post("/branches", branch.CreateBranchHandler(db, cfg))
	protected.Get("/branches", branch.ListBranchesHandler(db, cfg))
	protected.Get("/branches/:id", branch.GetBranchHandler(db, cfg))
	protected.Put("/branches/:id", branch.UpdateBranchHandler(db, cfg))
	protected.Delete("/branches/:id", branch.DeleteBranchHandler(db))

	// QR görseli
	protected.Post("/upload-qr", qr.UploadQRHandler(db, store))
	protected.Get("/qr", qr.LatestQRHandler(db))

	// Feedback yönetimi
	protected.Get("/feedback", feedback.ListFeedbackHandler(db))
	protected.Put("/feedback/:id", feedback.UpdateFeedbackHandler(db))
	protected.Delete("/feedback/:id", feedback.DeleteFeedbackHandler(db))

	// Analitik
	protected.Get("/feedback/analytics/global", analytics.GlobalSummaryHandler(db))
	protected.Get("/feedback/analytics/:branchId", analytics.BranchSummaryHandler(db))
	protected.Get("/feedback/insights/distribution/:branchId", analytics.RatingDistributionHandler(db))
	protected.Get("/feedback/insights/active-branches", analytics.ActiveBranchesHandler(db))
	protected.Get("/feedback/insights/monthly-trends", analytics.MonthlyTrendsHandler(db))
	protected.Get("/feedback/insights/export/csv", analytics.ExportCSVHandler(db))
	protected.Get("/feedback/insights/export/xlsx", analytics.ExportXLSXHandler(db))

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler(db))

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
