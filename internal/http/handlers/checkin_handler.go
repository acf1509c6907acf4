package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harborwell/wellness-backend/internal/services"
	"github.com/harborwell/wellness-backend/internal/utils"
)

// CreateCheckInRequest is the JSON payload for submitting a daily check-in.
type CreateCheckInRequest struct {
	Mood     int    `json:"mood" binding:"required"`
	Feedback string `json:"feedback"`
	Source   string `json:"source"`
}

// CreateCheckIn handles POST /checkins. One check-in per user per UTC day;
// a second submission returns 409 with the state unchanged.
func (h *Handlers) CreateCheckIn(c *gin.Context) {
	var req CreateCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	checkin, err := h.checkins.Submit(c.Request.Context(), userID(c), services.CheckinInput{
		Mood:     req.Mood,
		Feedback: req.Feedback,
		Source:   req.Source,
	})
	switch {
	case errors.Is(err, services.ErrInvalidMood):
		failFields(c, "validation failed", []FieldError{{Field: "mood", Message: "mood must be between 1 and 5"}})
	case errors.Is(err, services.ErrFeedbackTooLong):
		failFields(c, "validation failed", []FieldError{{Field: "feedback", Message: "feedback exceeds 500 characters"}})
	case errors.Is(err, services.ErrInvalidSource):
		failFields(c, "validation failed", []FieldError{{Field: "source", Message: "unknown check-in source"}})
	case errors.Is(err, services.ErrAlreadyCheckedIn):
		fail(c, http.StatusConflict, ErrCodeAlreadyCheckedIn, "already checked in today")
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		ok(c, http.StatusCreated, checkin)
	}
}

// ListCheckIns handles GET /checkins for the current user.
func (h *Handlers) ListCheckIns(c *gin.Context) {
	limit := utils.AtoiDefault(c.Query("limit"), 30)
	items, err := h.checkins.History(c.Request.Context(), userID(c), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// TodayCheckIn handles GET /checkins/today. 404 when the user has not
// checked in yet today.
func (h *Handlers) TodayCheckIn(c *gin.Context) {
	checkin, err := h.checkins.Today(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "no check-in today")
		return
	}
	ok(c, http.StatusOK, checkin)
}

// CheckInTrend handles GET /checkins/trend?days=N: the per-day mood series,
// oldest first, with gaps for missed days.
func (h *Handlers) CheckInTrend(c *gin.Context) {
	days := utils.AtoiDefault(c.Query("days"), 7)
	points, err := h.checkins.Trend(c.Request.Context(), userID(c), days)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"days": len(points), "series": points})
}

// CheckInStats handles GET /checkins/stats for the current user.
func (h *Handlers) CheckInStats(c *gin.Context) {
	stats, err := h.checkins.Stats(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, stats)
}

// WellnessState handles GET /wellness: the caller's derived state snapshot.
func (h *Handlers) WellnessState(c *gin.Context) {
	state, err := h.wellness.State(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "wellness state not found")
		return
	}
	ok(c, http.StatusOK, state)
}
