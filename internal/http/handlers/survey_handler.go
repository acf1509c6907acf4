package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harborwell/wellness-backend/internal/services"
)

// SubmitResponseRequest is the JSON payload for answering a survey. Answers
// are keyed by question id; values are typed per question kind.
type SubmitResponseRequest struct {
	Answers map[string]any `json:"answers" binding:"required"`
}

// ListSurveys handles GET /surveys: active surveys with their questions.
func (h *Handlers) ListSurveys(c *gin.Context) {
	surveys, err := h.surveys.ListActive(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, surveys)
}

// GetSurvey handles GET /surveys/:id.
func (h *Handlers) GetSurvey(c *gin.Context) {
	survey, err := h.surveys.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "survey not found")
		return
	}
	ok(c, http.StatusOK, survey)
}

// SubmitSurveyResponse handles POST /surveys/:id/responses. A second
// submission by the same user returns 409 and no further coins.
func (h *Handlers) SubmitSurveyResponse(c *gin.Context) {
	var req SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.surveys.SubmitResponse(c.Request.Context(), userID(c), c.Param("id"), req.Answers)
	switch {
	case errors.Is(err, services.ErrSurveyNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "survey not found")
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
	case errors.Is(err, services.ErrDuplicateResponse):
		fail(c, http.StatusConflict, ErrCodeDuplicateResponse, "survey already answered")
	case errors.Is(err, services.ErrInvalidAnswer):
		fail(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		ok(c, http.StatusCreated, resp)
	}
}
