package analytics

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportCSV(t *testing.T) {
	app, db := newTestApp(t)
	owner := seedOwner(t, db)
	b := seedBranch(t, db, owner.ID, "Merkez")

	for _, r := range []int{5, 3, 1} {
		seedFeedback(t, db, b.ID, owner.ID, r)
	}

	resp := authedGet(t, app, owner.ID, "/api/feedback/insights/export/csv")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "feedback_report.csv")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4) // başlık + 3 kayıt
	assert.Equal(t, exportHeader, records[0])

	for _, rec := range records[1:] {
		require.Len(t, rec, len(exportHeader))
		assert.Equal(t, "Merkez", rec[1])
		rating, err := strconv.Atoi(rec[2])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rating, 1)
		assert.LessOrEqual(t, rating, 5)
	}
}

func TestExportCSV_Empty(t *testing.T) {
	app, db := newTestApp(t)
	owner := seedOwner(t, db)

	resp := authedGet(t, app, owner.ID, "/api/feedback/insights/export/csv")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1) // yalnızca başlık
	assert.Equal(t, exportHeader, records[0])
}

func TestExportCSV_ScopedToOwner(t *testing.T) {
	app, db := newTestApp(t)
	owner := seedOwner(t, db)
	b := seedBranch(t, db, owner.ID, "Merkez")
	seedFeedback(t, db, b.ID, owner.ID, 4)

	other := seedOtherUser(t, db)

	resp := authedGet(t, app, other.ID, "/api/feedback/insights/export/csv")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestExportXLSX(t *testing.T) {
	app, db := newTestApp(t)
	owner := seedOwner(t, db)
	b := seedBranch(t, db, owner.ID, "Merkez")
	seedFeedback(t, db, b.ID, owner.ID, 5)
	seedFeedback(t, db, b.ID, owner.ID, 2)

	resp := authedGet(t, app, owner.ID, "/api/feedback/insights/export/xlsx")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "feedback_report.xlsx")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Feedback")
	require.NoError(t, err)
	require.Len(t, rows, 3) // başlık + 2 kayıt
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, "Merkez", rows[1][1])
}
