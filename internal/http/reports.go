package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"oclock-api/internal/domain"
)

type dayWorkedResponse struct {
	Date   string `json:"date"`
	Worked string `json:"worked"`
}

type monthlyReportResponse struct {
	UserID             int64               `json:"user_id"`
	UserName           string              `json:"user_name"`
	Year               int                 `json:"year"`
	Month              int                 `json:"month"`
	ExpectedDailyHours float64             `json:"expected_daily_hours"`
	DailyWorked        []dayWorkedResponse `json:"daily_worked"`
	TotalWorked        string              `json:"total_worked"`
	TotalExpected      string              `json:"total_expected"`
	Balance            string              `json:"balance"`
	Status             string              `json:"status"`
}

type accumulatedReportResponse struct {
	UserID           int64                   `json:"user_id"`
	UserName         string                  `json:"user_name"`
	TotalBalance     string                  `json:"total_balance"`
	MonthlySummaries []monthlyReportResponse `json:"monthly_summaries"`
}

type archiveObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func (h *Handler) monthlyReport(c *gin.Context) {
	userID, year, month, ok := h.reportParams(c)
	if !ok {
		return
	}

	report, err := h.reports.Monthly(c.Request.Context(), userID, year, month)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, monthlyToResponse(report))
}

func (h *Handler) accumulatedReport(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	if !canAccessUser(c, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	report, err := h.reports.Accumulated(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := accumulatedReportResponse{
		UserID:           report.UserID,
		UserName:         report.UserName,
		TotalBalance:     report.TotalBalance.String(),
		MonthlySummaries: make([]monthlyReportResponse, len(report.Months)),
	}
	for i := range report.Months {
		resp.MonthlySummaries[i] = monthlyToResponse(&report.Months[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) archiveMonthly(c *gin.Context) {
	if h.archives == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage service not configured"})
		return
	}
	userID, year, month, ok := h.reportParams(c)
	if !ok {
		return
	}

	location, err := h.archives.ArchiveMonthly(c.Request.Context(), userID, year, month)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"location": location})
}

func (h *Handler) archiveAccumulated(c *gin.Context) {
	if h.archives == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage service not configured"})
		return
	}
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	locations, err := h.archives.ArchiveAccumulated(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"locations": locations})
}

func (h *Handler) listArchives(c *gin.Context) {
	if h.archives == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage service not configured"})
		return
	}

	objects, err := h.archives.ListArchives(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]archiveObjectResponse, len(objects))
	for i, obj := range objects {
		resp[i] = archiveObjectResponse{
			Key:  obj.Key,
			Size: obj.Size,
		}
		if obj.LastModified != nil && !obj.LastModified.IsZero() {
			v := obj.LastModified.Format(time.RFC3339)
			resp[i].LastModified = &v
		}
	}
	c.JSON(http.StatusOK, resp)
}

// reportParams pulls userId from the path plus year/month query values and
// checks the caller may see the target user's reports.
func (h *Handler) reportParams(c *gin.Context) (int64, int, time.Month, bool) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return 0, 0, 0, false
	}
	if !canAccessUser(c, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return 0, 0, 0, false
	}

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return 0, 0, 0, false
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return 0, 0, 0, false
	}
	return userID, year, time.Month(month), true
}

func monthlyToResponse(report *domain.MonthlyReport) monthlyReportResponse {
	resp := monthlyReportResponse{
		UserID:             report.UserID,
		UserName:           report.UserName,
		Year:               report.Year,
		Month:              int(report.Month),
		ExpectedDailyHours: report.ExpectedDailyHours,
		DailyWorked:        make([]dayWorkedResponse, len(report.Days)),
		TotalWorked:        report.TotalWorked.String(),
		TotalExpected:      report.TotalExpected.String(),
		Balance:            report.Balance.String(),
		Status:             string(report.Status),
	}
	for i, day := range report.Days {
		resp.DailyWorked[i] = dayWorkedResponse{
			Date:   day.Date.Format(time.DateOnly),
			Worked: day.Worked.String(),
		}
	}
	return resp
}
