package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"oclock-api/internal/domain"
	"oclock-api/internal/service"
)

// timestampLayout mirrors the naive date-times accepted by the API; RFC 3339
// values are tolerated but their offset is discarded.
const timestampLayout = "2006-01-02T15:04:05"

type clockRequest struct {
	Timestamp string `json:"timestamp"`
}

type punchRequest struct {
	UserID    int64  `json:"user_id" binding:"required"`
	Timestamp string `json:"timestamp" binding:"required"`
	Kind      string `json:"kind" binding:"required"`
	Note      string `json:"note"`
}

type punchResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Timestamp string `json:"timestamp"`
	Kind      string `json:"kind"`
	Note      string `json:"note"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (h *Handler) clockPunch(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	if !canAccessUser(c, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	var req clockRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	at := time.Now()
	if req.Timestamp != "" {
		parsed, err := parseTimestamp(req.Timestamp)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		at = parsed
	}

	punch, err := h.punches.Clock(c.Request.Context(), userID, at)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, punchToResponse(punch))
}

func (h *Handler) listPunchesByDay(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	if !canAccessUser(c, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	day, err := time.Parse(time.DateOnly, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted as 2006-01-02"})
		return
	}

	punches, err := h.punches.ListByUserAndDay(c.Request.Context(), userID, day)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, punchesToResponse(punches))
}

func (h *Handler) listPunchesByUserAndRange(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	if !canAccessUser(c, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	start, end, ok := rangeQuery(c)
	if !ok {
		return
	}

	punches, err := h.punches.ListByUserAndRange(c.Request.Context(), userID, start, end)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, punchesToResponse(punches))
}

func (h *Handler) listPunchesByRange(c *gin.Context) {
	start, end, ok := rangeQuery(c)
	if !ok {
		return
	}

	punches, err := h.punches.ListByRange(c.Request.Context(), start, end)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, punchesToResponse(punches))
}

func (h *Handler) listPunches(c *gin.Context) {
	punches, err := h.punches.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, punchesToResponse(punches))
}

func (h *Handler) getPunch(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	punch, err := h.punches.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, punchToResponse(punch))
}

func (h *Handler) createPunch(c *gin.Context) {
	input, ok := bindPunchInput(c)
	if !ok {
		return
	}

	punch, err := h.punches.Create(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, punchToResponse(punch))
}

func (h *Handler) updatePunch(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	input, ok := bindPunchInput(c)
	if !ok {
		return
	}

	punch, err := h.punches.Update(c.Request.Context(), id, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, punchToResponse(punch))
}

func (h *Handler) deletePunch(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.punches.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bindPunchInput(c *gin.Context) (service.PunchInput, bool) {
	var req punchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service.PunchInput{}, false
	}

	at, err := parseTimestamp(req.Timestamp)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service.PunchInput{}, false
	}

	return service.PunchInput{
		UserID:    req.UserID,
		Timestamp: at,
		Kind:      domain.PunchKind(req.Kind),
		Note:      req.Note,
	}, true
}

func rangeQuery(c *gin.Context) (time.Time, time.Time, bool) {
	start, err := parseTimestamp(c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start: " + err.Error()})
		return time.Time{}, time.Time{}, false
	}
	end, err := parseTimestamp(c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end: " + err.Error()})
		return time.Time{}, time.Time{}, false
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must not be before start"})
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range []string{timestampLayout, time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp must be formatted as %s", timestampLayout)
}

func punchToResponse(punch *domain.Punch) punchResponse {
	return punchResponse{
		ID:        punch.ID,
		UserID:    punch.UserID,
		Timestamp: punch.Timestamp.Format(timestampLayout),
		Kind:      string(punch.Kind),
		Note:      punch.Note,
		CreatedAt: punch.CreatedAt.Format(time.RFC3339),
		UpdatedAt: punch.UpdatedAt.Format(time.RFC3339),
	}
}

func punchesToResponse(punches []domain.Punch) []punchResponse {
	resp := make([]punchResponse, len(punches))
	for i := range punches {
		resp[i] = punchToResponse(&punches[i])
	}
	return resp
}
