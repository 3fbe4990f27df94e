package controllers

import (
	"bytes"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-listing-dashboard/apperror"
	"github.com/yeremiapane/food-listing-dashboard/export"
	"github.com/yeremiapane/food-listing-dashboard/reports"
	"github.com/yeremiapane/food-listing-dashboard/services"
	"github.com/yeremiapane/food-listing-dashboard/utils"
)

type ReportController struct {
	Runner  *reports.Runner
	Archive *services.ReportArchive // nil when archiving is not configured
}

func NewReportController(runner *reports.Runner, archive *services.ReportArchive) *ReportController {
	return &ReportController{Runner: runner, Archive: archive}
}

// GetCatalog lists every available report.
func (rc *ReportController) GetCatalog(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Report catalog", reports.Catalog())
}

func (rc *ReportController) RunReport(c *gin.Context) {
	report, res, err := rc.Runner.RunReport(c.Request.Context(), c.Param("key"))
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, report.Label, gin.H{
		"report":  report,
		"query":   res.Query,
		"columns": res.Columns,
		"rows":    res.Rows,
	})
}

func (rc *ReportController) ExportCSV(c *gin.Context) {
	report, res, err := rc.Runner.RunReport(c.Request.Context(), c.Param("key"))
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.CSV(&buf, res); err != nil {
		utils.RespondFailure(c, err)
		return
	}
	sendFile(c, export.ContentTypeCSV, export.FileName(report.Label, "csv"), buf.Bytes())
}

func (rc *ReportController) ExportPDF(c *gin.Context) {
	report, res, err := rc.Runner.RunReport(c.Request.Context(), c.Param("key"))
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.PDF(&buf, report.Label, res, time.Now()); err != nil {
		utils.RespondFailure(c, err)
		return
	}
	sendFile(c, export.ContentTypePDF, export.FileName(report.Label, "pdf"), buf.Bytes())
}

// Chart draws the report as a bar chart PNG.
func (rc *ReportController) Chart(c *gin.Context) {
	report, res, err := rc.Runner.RunReport(c.Request.Context(), c.Param("key"))
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Chart(&buf, report.Label, res); err != nil {
		utils.RespondFailure(c, err)
		return
	}
	c.Data(http.StatusOK, export.ContentTypePNG, buf.Bytes())
}

// ArchiveReport uploads the report's CSV export to the configured bucket.
func (rc *ReportController) ArchiveReport(c *gin.Context) {
	if rc.Archive == nil {
		utils.RespondError(c, http.StatusServiceUnavailable, errors.New("report archive is not configured"))
		return
	}

	report, res, err := rc.Runner.RunReport(c.Request.Context(), c.Param("key"))
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}

	archived, err := rc.Archive.Archive(c.Request.Context(), report, res)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Report archived", archived)
}

// RunQuery runs an operator supplied read-only statement. Engine errors are
// the operator's to fix, so they come back as 400 with the query text.
func (rc *ReportController) RunQuery(c *gin.Context) {
	var input struct {
		Query string `json:"query" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondFailure(c, apperror.ValidationFailed("query", err.Error()))
		return
	}

	text, err := readOnlyStatement(input.Query)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}

	res, err := rc.Runner.RunReadOnly(c.Request.Context(), text)
	if err != nil {
		if appErr, ok := apperror.As(err); ok && errors.Is(err, apperror.ErrQuery) {
			utils.RespondJSON(c, http.StatusBadRequest, appErr.Message, utils.FailureData{
				Kind:  appErr.KindName(),
				Query: appErr.Query,
			})
			return
		}
		utils.RespondFailure(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Query executed", res)
}

// writeKeywords may not appear outside literals in an ad-hoc query. They
// catch data-modifying CTEs such as WITH d AS (DELETE ...) SELECT.
var writeKeywords = map[string]bool{
	"INSERT": true, "UPDATE": true, "DELETE": true, "MERGE": true, "UPSERT": true,
	"DROP": true, "ALTER": true, "CREATE": true, "TRUNCATE": true,
	"GRANT": true, "REVOKE": true, "ATTACH": true, "DETACH": true, "PRAGMA": true,
}

// readOnlyStatement accepts a single SELECT or WITH statement, dropping one
// trailing semicolon.
func readOnlyStatement(q string) (string, error) {
	q = strings.TrimSpace(q)
	q = strings.TrimSpace(strings.TrimSuffix(q, ";"))

	words := sqlWords(q)
	if len(words) == 0 {
		return "", apperror.ValidationFailed("query", "query is empty")
	}
	switch words[0] {
	case "SELECT", "WITH":
	default:
		return "", apperror.ValidationFailed("query", "only SELECT and WITH statements are allowed")
	}
	for _, w := range words {
		if writeKeywords[w] {
			return "", apperror.ValidationFailed("query", w+" is not allowed in a read-only query")
		}
	}
	if strings.Contains(q, ";") {
		return "", apperror.ValidationFailed("query", "only a single statement is allowed")
	}
	return q, nil
}

// sqlWords returns the upper-cased bare words of q, skipping quoted
// literals, quoted identifiers and comments.
func sqlWords(q string) []string {
	var words []string
	for i := 0; i < len(q); {
		ch := q[i]
		switch {
		case ch == '\'' || ch == '"' || ch == '`':
			j := i + 1
			for j < len(q) && q[j] != ch {
				j++
			}
			i = j + 1
		case ch == '-' && i+1 < len(q) && q[i+1] == '-':
			for i < len(q) && q[i] != '\n' {
				i++
			}
		case ch == '/' && i+1 < len(q) && q[i+1] == '*':
			end := strings.Index(q[i+2:], "*/")
			if end < 0 {
				i = len(q)
			} else {
				i += end + 4
			}
		case isWordByte(ch):
			j := i + 1
			for j < len(q) && isWordByte(q[j]) {
				j++
			}
			words = append(words, strings.ToUpper(q[i:j]))
			i = j
		default:
			i++
		}
	}
	return words
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func sendFile(c *gin.Context, contentType, fileName string, data []byte) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	c.Data(http.StatusOK, contentType, data)
}
