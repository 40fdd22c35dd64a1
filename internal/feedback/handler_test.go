package feedback

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"qrreview-backend/internal/auth"
	"qrreview-backend/internal/config"
	"qrreview-backend/internal/database"
	"qrreview-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-test-secret-test-secret!"

func testErrorHandler(c *fiber.Ctx, err error) error {
	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Beklenmeyen sunucu hatası"})
}

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := database.OpenTest()
	require.NoError(t, err)

	cfg := &config.Config{JWTSecret: testSecret, TokenTTLHours: 168}

	app := fiber.New(fiber.Config{ErrorHandler: testErrorHandler})
	api := app.Group("/api")
	api.Post("/feedback", SubmitFeedbackHandler(db))

	protected := api.Group("")
	protected.Use(auth.CookieAuth(db, cfg))
	protected.Get("/feedback", ListFeedbackHandler(db))
	protected.Put("/feedback/:id", UpdateFeedbackHandler(db))
	protected.Delete("/feedback/:id", DeleteFeedbackHandler(db))

	return app, db
}

func seedOwnerAndBranch(t *testing.T, db *gorm.DB) (*models.User, *models.Branch) {
	t.Helper()

	user := models.User{Username: "ayse", Email: "ayse@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	branch := models.Branch{
		Name:            "Merkez Şube",
		Address:         "İstiklal Cad. 1",
		CreatedBy:       user.ID,
		IsActive:        true,
		BranchType:      models.BranchTypeRestaurant,
		GoogleReviewURL: "https://g.page/r/merkez/review",
	}
	require.NoError(t, db.Create(&branch).Error)
	return &user, &branch
}

func sessionCookie(t *testing.T, userID uint) *http.Cookie {
	t.Helper()
	token, err := auth.GenerateSessionToken(testSecret, userID, time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: auth.SessionCookieName, Value: token}
}

func jsonReq(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func submit(t *testing.T, app *fiber.App, branchID uint, rating int) *http.Response {
	t.Helper()
	resp, err := app.Test(jsonReq("POST", "/api/feedback", fiber.Map{
		"branchId": branchID,
		"name":     "Müşteri",
		"email":    "musteri@example.com",
		"rating":   rating,
		"comments": "yorum",
	}), -1)
	require.NoError(t, err)
	return resp
}

func TestSubmit_RatingOutOfRange(t *testing.T) {
	app, db := newTestApp(t)
	_, branch := seedOwnerAndBranch(t, db)

	for _, rating := range []int{0, 6, -1} {
		resp := submit(t, app, branch.ID, rating)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "rating %d kabul edilmemeli", rating)
	}

	var count int64
	db.Model(&models.Feedback{}).Count(&count)
	assert.Zero(t, count)
}

func TestSubmit_MissingFields(t *testing.T) {
	app, db := newTestApp(t)
	_, branch := seedOwnerAndBranch(t, db)

	resp, err := app.Test(jsonReq("POST", "/api/feedback", fiber.Map{
		"branchId": branch.ID,
		"rating":   5,
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmit_UnknownBranch(t *testing.T) {
	app, _ := newTestApp(t)

	resp := submit(t, app, 9999, 3)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSubmit_StoresRatingAndUpdatesStats(t *testing.T) {
	app, db := newTestApp(t)
	owner, branch := seedOwnerAndBranch(t, db)

	ratings := []int{5, 4, 3, 1, 2}
	for _, r := range ratings {
		resp := submit(t, app, branch.ID, r)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	var list []models.Feedback
	require.NoError(t, db.Order("id").Find(&list).Error)
	require.Len(t, list, len(ratings))
	for i, fb := range list {
		assert.Equal(t, ratings[i], fb.Rating)
		assert.Equal(t, owner.ID, fb.UserID)
	}

	var updated models.Branch
	require.NoError(t, db.First(&updated, branch.ID).Error)
	assert.Equal(t, int64(len(ratings)), updated.TotalReviews)
	assert.InDelta(t, 3.0, updated.AverageRating, 1e-9) // (5+4+3+1+2)/5
}

func TestSubmit_HighRatingRedirects(t *testing.T) {
	app, db := newTestApp(t)
	_, branch := seedOwnerAndBranch(t, db)

	resp := submit(t, app, branch.ID, 5)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["redirect"])
	assert.Equal(t, "https://g.page/r/merkez/review", body["googleReviewLink"])

	// Düşük puan yönlendirilmez, kayıt dashboard'da kalır
	resp = submit(t, app, branch.ID, 2)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, false, body["redirect"])
}

func TestSubmit_RedirectFallsBackToOwnerURL(t *testing.T) {
	app, db := newTestApp(t)
	owner, branch := seedOwnerAndBranch(t, db)

	require.NoError(t, db.Model(branch).Update("google_review_url", "").Error)
	ownerURL := "https://g.page/r/sahip/review"
	require.NoError(t, db.Model(owner).Update("google_review_url", ownerURL).Error)

	resp := submit(t, app, branch.ID, 4)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, ownerURL, body["googleReviewLink"])
}

func TestList_RequiresAuthAndScopesToOwner(t *testing.T) {
	app, db := newTestApp(t)
	owner, branch := seedOwnerAndBranch(t, db)

	other := models.User{Username: "ali", Email: "ali@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&other).Error)

	resp := submit(t, app, branch.ID, 2)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/feedback", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/api/feedback", nil)
	req.AddCookie(sessionCookie(t, owner.ID))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Len(t, body["feedbacks"], 1)

	// Başka kullanıcı başkasının feedback'ini görmez
	req = httptest.NewRequest("GET", "/api/feedback", nil)
	req.AddCookie(sessionCookie(t, other.ID))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Len(t, body["feedbacks"], 0)
}

func TestUpdateFeedback_RecomputesStats(t *testing.T) {
	app, db := newTestApp(t)
	owner, branch := seedOwnerAndBranch(t, db)

	require.Equal(t, fiber.StatusCreated, submit(t, app, branch.ID, 5).StatusCode)
	require.Equal(t, fiber.StatusCreated, submit(t, app, branch.ID, 3).StatusCode)

	var fb models.Feedback
	require.NoError(t, db.Where("rating = ?", 5).First(&fb).Error)

	req := jsonReq("PUT", fmt.Sprintf("/api/feedback/%d", fb.ID), fiber.Map{"rating": 1})
	req.AddCookie(sessionCookie(t, owner.ID))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated models.Branch
	require.NoError(t, db.First(&updated, branch.ID).Error)
	assert.Equal(t, int64(2), updated.TotalReviews)
	assert.InDelta(t, 2.0, updated.AverageRating, 1e-9) // (1+3)/2

	// Audit kaydı düştü
	var auditCount int64
	db.Model(&models.AuditLog{}).Where("entity_type = ? AND action = ?", "feedback", "update").Count(&auditCount)
	assert.Equal(t, int64(1), auditCount)
}

func TestUpdateFeedback_RatingOutOfRange(t *testing.T) {
	app, db := newTestApp(t)
	owner, branch := seedOwnerAndBranch(t, db)
	require.Equal(t, fiber.StatusCreated, submit(t, app, branch.ID, 3).StatusCode)

	var fb models.Feedback
	require.NoError(t, db.First(&fb).Error)

	req := jsonReq("PUT", fmt.Sprintf("/api/feedback/%d", fb.ID), fiber.Map{"rating": 9})
	req.AddCookie(sessionCookie(t, owner.ID))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeleteFeedback_RecomputesStats(t *testing.T) {
	app, db := newTestApp(t)
	owner, branch := seedOwnerAndBranch(t, db)

	require.Equal(t, fiber.StatusCreated, submit(t, app, branch.ID, 5).StatusCode)
	require.Equal(t, fiber.StatusCreated, submit(t, app, branch.ID, 1).StatusCode)

	var fb models.Feedback
	require.NoError(t, db.Where("rating = ?", 1).First(&fb).Error)

	req := httptest.NewRequest("DELETE", fmt.Sprintf("/api/feedback/%d", fb.ID), nil)
	req.AddCookie(sessionCookie(t, owner.ID))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated models.Branch
	require.NoError(t, db.First(&updated, branch.ID).Error)
	assert.Equal(t, int64(1), updated.TotalReviews)
	assert.InDelta(t, 5.0, updated.AverageRating, 1e-9)
}

func TestUpdateFeedback_OtherUserGets404(t *testing.T) {
	app, db := newTestApp(t)
	_, branch := seedOwnerAndBranch(t, db)
	require.Equal(t, fiber.StatusCreated, submit(t, app, branch.ID, 3).StatusCode)

	other := models.User{Username: "ali", Email: "ali@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&other).Error)

	var fb models.Feedback
	require.NoError(t, db.First(&fb).Error)

	req := jsonReq("PUT", fmt.Sprintf("/api/feedback/%d", fb.ID), fiber.Map{"rating": 1})
	req.AddCookie(sessionCookie(t, other.ID))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
