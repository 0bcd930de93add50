package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pharmacy-site/pkg/models"
)

func TestWaitlistXLSX(t *testing.T) {
	eastern := time.FixedZone("EDT", -4*60*60)
	entries := []models.WaitlistEntry{
		{Name: "Jane Smith", Email: "jane@example.com", Phone: "614-349-5140",
			CreatedAt: time.Date(2026, time.October, 20, 1, 15, 0, 0, time.UTC), Status: models.WaitlistActive},
		{Name: "Sam Lee", Email: "sam@example.com",
			CreatedAt: time.Date(2026, time.October, 19, 14, 0, 0, 0, time.UTC), Status: models.WaitlistContacted},
	}

	data, err := WaitlistXLSX(entries, eastern)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{WaitlistSheet}, f.GetSheetList())
	rows, err := f.GetRows(WaitlistSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, WaitlistHeader, rows[0])
	assert.Equal(t, []string{"Jane Smith", "jane@example.com", "614-349-5140", "2026-10-19 21:15", "active"}, rows[1])
	assert.Equal(t, []string{"Sam Lee", "sam@example.com", "", "2026-10-19 10:00", "contacted"}, rows[2])
}

func TestWaitlistXLSXEmpty(t *testing.T) {
	data, err := WaitlistXLSX(nil, time.UTC)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(WaitlistSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
