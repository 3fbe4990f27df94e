// Package export renders report results as downloadable files.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/yeremiapane/food-listing-dashboard/apperror"
	"github.com/yeremiapane/food-listing-dashboard/reports"
)

const (
	ContentTypeCSV = "text/csv; charset=utf-8"
	ContentTypePDF = "application/pdf"
	ContentTypePNG = "image/png"
)

// FileName is the download name for a report export, e.g.
// "Expired Food Items_report.csv".
func FileName(label, ext string) string {
	return fmt.Sprintf("%s_report.%s", label, ext)
}

// CSV writes a header row of column names followed by one line per row.
func CSV(w io.Writer, res *reports.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(res.Columns); err != nil {
		return err
	}
	record := make([]string, len(res.Columns))
	for i := range res.Rows {
		for j, v := range res.Values(i) {
			record[j] = reports.FormatValue(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

const (
	pdfMargin   = 10.0
	pdfRowH     = 6.0
	pdfFontSize = 8.0
)

// PDF renders the result as a landscape A4 table with the report title on
// top and the header repeated on every page.
func PDF(w io.Writer, title string, res *reports.Result, generated time.Time) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pageW, pageH := pdf.GetPageSize()
	cols := len(res.Columns)
	colW := (pageW - 2*pdfMargin) / math.Max(1, float64(cols))

	header := func() {
		pdf.SetFont("Helvetica", "B", pdfFontSize)
		pdf.SetFillColor(46, 125, 50)
		pdf.SetTextColor(255, 255, 255)
		for _, c := range res.Columns {
			pdf.CellFormat(colW, pdfRowH+1, fit(pdf, tr(c), colW), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", pdfFontSize)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Generated %s, %d rows", generated.Format("2006-01-02 15:04"), len(res.Rows))), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if cols == 0 || len(res.Rows) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 8, "No data available.", "", 1, "L", false, 0, "")
		return pdf.Output(w)
	}

	header()
	for i := range res.Rows {
		if pdf.GetY()+pdfRowH > pageH-pdfMargin-5 {
			pdf.AddPage()
			header()
		}
		fill := i%2 == 1
		pdf.SetFillColor(241, 248, 233)
		for _, v := range res.Values(i) {
			align := "L"
			if _, ok := reports.Number(v); ok {
				align = "R"
			}
			pdf.CellFormat(colW, pdfRowH, fit(pdf, tr(reports.FormatValue(v)), colW), "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf.Output(w)
}

// fit trims s so it fits a cell of width w.
func fit(pdf *fpdf.Fpdf, s string, w float64) string {
	limit := w - 2
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > limit {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// ChartSeries picks what a bar chart of the result plots: the first text
// column for labels and the first numeric column for bar heights.
func ChartSeries(res *reports.Result) (labelCol, valueCol string, err error) {
	if len(res.Rows) == 0 {
		return "", "", apperror.ValidationFailed("report", "report returned no rows to chart")
	}
	first := res.Rows[0]
	for _, c := range res.Columns {
		v := first[c]
		if _, ok := reports.Number(v); ok {
			if valueCol == "" {
				valueCol = c
			}
			continue
		}
		if _, ok := v.(string); ok && labelCol == "" {
			labelCol = c
		}
	}
	if valueCol == "" {
		return "", "", apperror.ValidationFailed("report", "report has no numeric column to chart")
	}
	return labelCol, valueCol, nil
}

const (
	chartBarWidth   = 40
	chartBarSpacing = 24
	chartMinWidth   = 800
	chartHeight     = 480
)

// Chart renders the result as a PNG bar chart.
func Chart(w io.Writer, title string, res *reports.Result) error {
	labelCol, valueCol, err := ChartSeries(res)
	if err != nil {
		return err
	}

	bars := make([]chart.Value, 0, len(res.Rows))
	max := 0.0
	for i, row := range res.Rows {
		v, _ := reports.Number(row[valueCol])
		label := fmt.Sprintf("#%d", i+1)
		if labelCol != "" {
			label = reports.FormatValue(row[labelCol])
		}
		bars = append(bars, chart.Value{Label: label, Value: v})
		max = math.Max(max, v)
	}
	if max <= 0 {
		max = 1
	}

	width := len(bars)*(chartBarWidth+chartBarSpacing) + 160
	if width < chartMinWidth {
		width = chartMinWidth
	}

	graph := chart.BarChart{
		Title:      fmt.Sprintf("%s: %s", title, valueCol),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		Width:      width,
		Height:     chartHeight,
		BarWidth:   chartBarWidth,
		BarSpacing: chartBarSpacing,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: max * 1.1},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}
