package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/data2rest/logscope/internal/domain"
	"github.com/data2rest/logscope/internal/models"
	"github.com/data2rest/logscope/internal/principal"
)

// dateLayout is the format of the start_date and end_date query parameters.
const dateLayout = "2006-01-02"

const (
	maxActionLength = 100
	maxSearchLength = 200
)

// PageLimits bounds the limit query parameter.
type PageLimits struct {
	Default int
	Max     int
}

// LogHandler serves the scoped activity-log endpoints.
type LogHandler struct {
	svc    domain.LogService
	limits PageLimits
	log    *logrus.Logger
}

// NewLogHandler creates a LogHandler. Zero limits fall back to 100 and 1000.
func NewLogHandler(svc domain.LogService, limits PageLimits, log *logrus.Logger) *LogHandler {
	if limits.Max <= 0 {
		limits.Max = maxPaginationLimit
	}
	if limits.Default <= 0 || limits.Default > limits.Max {
		limits.Default = min(100, limits.Max)
	}

	return &LogHandler{svc: svc, limits: limits, log: log}
}

// List handles GET /logs.
func (h *LogHandler) List(c *gin.Context) {
	p, err := principal.Resolve(c)
	if err != nil {
		respondServiceError(c, h.log, err, "list logs")
		return
	}

	filter, err := parseLogFilter(c)
	if err != nil {
		respondServiceError(c, h.log, err, "list logs")
		return
	}

	page := models.Page{
		Limit:  parseLimit(c.Query("limit"), h.limits.Default, h.limits.Max),
		Offset: parseOffset(c.Query("offset")),
	}

	result, err := h.svc.ListLogs(c.Request.Context(), p, filter, page)
	if err != nil {
		respondServiceError(c, h.log, err, "list logs")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Filters handles GET /logs/filters.
func (h *LogHandler) Filters(c *gin.Context) {
	p, err := principal.Resolve(c)
	if err != nil {
		respondServiceError(c, h.log, err, "filter options")
		return
	}

	opts, err := h.svc.FilterOptions(c.Request.Context(), p)
	if err != nil {
		respondServiceError(c, h.log, err, "filter options")
		return
	}

	if opts.Actors == nil {
		opts.Actors = []models.Actor{}
	}
	if opts.Actions == nil {
		opts.Actions = []string{}
	}

	c.JSON(http.StatusOK, opts)
}

// Scope handles GET /logs/scope.
func (h *LogHandler) Scope(c *gin.Context) {
	p, err := principal.Resolve(c)
	if err != nil {
		respondServiceError(c, h.log, err, "resolve scope")
		return
	}

	summary, err := h.svc.Scope(c.Request.Context(), p)
	if err != nil {
		respondServiceError(c, h.log, err, "resolve scope")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Export handles GET /logs/export. The CSV is rendered in full before the
// response starts so a mid-export failure still maps to an error status.
func (h *LogHandler) Export(c *gin.Context) {
	p, err := principal.Resolve(c)
	if err != nil {
		respondServiceError(c, h.log, err, "export logs")
		return
	}

	filter, err := parseLogFilter(c)
	if err != nil {
		respondServiceError(c, h.log, err, "export logs")
		return
	}

	var buf bytes.Buffer

	rows, err := h.svc.ExportCSV(c.Request.Context(), p, filter, &buf)
	if err != nil {
		respondServiceError(c, h.log, err, "export logs")
		return
	}

	filename := fmt.Sprintf("activity-logs-%s.csv", time.Now().UTC().Format(dateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("X-Export-Rows", strconv.Itoa(rows))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// parseLogFilter reads the optional narrowing filters from the query string.
func parseLogFilter(c *gin.Context) (models.LogFilter, error) {
	var f models.LogFilter

	if uid := c.Query("user_id"); uid != "" {
		if _, err := uuid.Parse(uid); err != nil {
			return f, models.InvalidFilterError("user_id", "must be a UUID")
		}
		f.UserID = uid
	}

	f.Action = c.Query("action")
	if len(f.Action) > maxActionLength {
		return f, models.InvalidFilterError("action", fmt.Sprintf("exceeds %d characters", maxActionLength))
	}

	f.Search = c.Query("s")
	if len(f.Search) > maxSearchLength {
		return f, models.InvalidFilterError("s", fmt.Sprintf("exceeds %d characters", maxSearchLength))
	}

	var err error

	if f.StartDate, err = parseDate(c.Query("start_date"), "start_date"); err != nil {
		return f, err
	}

	if f.EndDate, err = parseDate(c.Query("end_date"), "end_date"); err != nil {
		return f, err
	}

	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		return f, models.InvalidFilterError("start_date", "is after end_date")
	}

	return f, nil
}

func parseDate(s, field string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, models.InvalidFilterError(field, "must be YYYY-MM-DD")
	}

	return &t, nil
}
