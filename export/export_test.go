package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/food-listing-dashboard/apperror"
	"github.com/yeremiapane/food-listing-dashboard/reports"
)

func sampleResult() *reports.Result {
	return &reports.Result{
		Columns: []string{"Food_Type", "Count", "Total_Quantity"},
		Rows: []map[string]interface{}{
			{"Food_Type": "Vegan", "Count": int64(2), "Total_Quantity": int64(35)},
			{"Food_Type": "Vegetarian, cooked", "Count": int64(3), "Total_Quantity": 47.5},
			{"Food_Type": nil, "Count": int64(1), "Total_Quantity": int64(5)},
		},
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Expired Food Items_report.csv", FileName("Expired Food Items", "csv"))
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, sampleResult()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Food_Type", "Count", "Total_Quantity"},
		{"Vegan", "2", "35"},
		{"Vegetarian, cooked", "3", "47.5"},
		{"", "1", "5"},
	}, records)
}

func TestCSVEmptyResultKeepsHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, &reports.Result{Columns: []string{"Food_ID"}}))
	assert.Equal(t, "Food_ID\n", buf.String())
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	err := PDF(&buf, "Food Available by Type", sampleResult(), time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestPDFManyRowsAndNoRows(t *testing.T) {
	res := &reports.Result{Columns: []string{"Food_ID", "Food_Name"}}
	for i := 0; i < 120; i++ {
		res.Rows = append(res.Rows, map[string]interface{}{"Food_ID": int64(i), "Food_Name": "Crème brûlée with a very long description that will not fit"})
	}
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, "Long", res, time.Now()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	require.NoError(t, PDF(&buf, "Empty", &reports.Result{Columns: []string{"Food_ID"}}, time.Now()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestChartSeries(t *testing.T) {
	label, value, err := ChartSeries(sampleResult())
	require.NoError(t, err)
	assert.Equal(t, "Food_Type", label)
	assert.Equal(t, "Count", value)

	_, _, err = ChartSeries(&reports.Result{
		Columns: []string{"Food_Name"},
		Rows:    []map[string]interface{}{{"Food_Name": "Bread"}},
	})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, _, err = ChartSeries(&reports.Result{Columns: []string{"Count"}})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestChartRendersPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Chart(&buf, "Food Available by Type", sampleResult()))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, img.Bounds().Dx(), chartMinWidth)
}

func TestChartAllZero(t *testing.T) {
	res := &reports.Result{
		Columns: []string{"Month", "Listings"},
		Rows: []map[string]interface{}{
			{"Month": "2026-01", "Listings": int64(0)},
			{"Month": "2025-12", "Listings": int64(0)},
		},
	}
	var buf bytes.Buffer
	assert.NoError(t, Chart(&buf, "Monthly", res))
}
