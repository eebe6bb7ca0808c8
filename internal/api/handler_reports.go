package api

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"uptime-report-backend/internal/report"
	"uptime-report-backend/internal/uptime"
)

var reportHeader = []string{
	"store_id",
	"uptime_last_hour", "downtime_last_hour",
	"uptime_last_day", "downtime_last_day",
	"uptime_last_week", "downtime_last_week",
}

// TriggerReport generates a report and answers once it is stored.
func (h *Handler) TriggerReport(c *gin.Context) {
	res, err := h.reports.Start(c.Request.Context())
	if err != nil {
		log.Printf("report run failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report generation failed"})
		return
	}
	if res.AlreadyRunning {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Running", "report_id": res.ReportID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Complete", "report_id": res.ReportID})
}

type getReportRequest struct {
	ReportID string `json:"report_id" binding:"required"`
}

// PostGetReport handles POST /api/get-report.
func (h *Handler) PostGetReport(c *gin.Context) {
	var req getReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.serveReport(c, req.ReportID)
}

// GetReport handles GET /api/reports/:report_id.
func (h *Handler) GetReport(c *gin.Context) {
	h.serveReport(c, c.Param("report_id"))
}

func (h *Handler) serveReport(c *gin.Context, reportID string) {
	lookup, err := h.reports.Get(c.Request.Context(), reportID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	switch lookup.Status {
	case report.LookupRunning:
		c.JSON(http.StatusBadRequest, gin.H{"message": "Running", "report_id": lookup.ReportID})
	case report.LookupNotFound:
		c.JSON(http.StatusNotFound, gin.H{"message": "invalid report id"})
	default:
		body, err := encodeCSV(lookup.Rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=report-%s.csv", reportID))
		c.Data(http.StatusOK, "text/csv", body)
	}
}

func encodeCSV(rows []uptime.Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(reportHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := []string{
			r.SiteID,
			formatFloat(r.UptimeLastHourMinutes), formatFloat(r.DowntimeLastHourMinutes),
			formatFloat(r.UptimeLastDayHours), formatFloat(r.DowntimeLastDayHours),
			formatFloat(r.UptimeLastWeekHours), formatFloat(r.DowntimeLastWeekHours),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// GetSiteUptime handles GET /api/sites/:site_id/uptime.
func (h *Handler) GetSiteUptime(c *gin.Context) {
	row, err := h.sites.EstimateSite(c.Request.Context(), c.Param("site_id"))
	if errors.Is(err, report.ErrUnknownSite) {
		c.JSON(http.StatusNotFound, gin.H{"error": "site not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, row)
}
