package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harborwell/wellness-backend/internal/services"
	"github.com/harborwell/wellness-backend/internal/utils"
)

// QuoteEngagementRequest is the JSON payload for recording engagement with
// the daily quote. All fields are optional; flags only ever move to true.
type QuoteEngagementRequest struct {
	Viewed           *bool `json:"viewed"`
	Liked            *bool `json:"liked"`
	Shared           *bool `json:"shared"`
	TimeSpentSeconds *int  `json:"time_spent_seconds"`
	Rating           *int  `json:"rating"`
}

// QuoteOfTheDay handles GET /quotes/today: deterministic daily rotation.
func (h *Handlers) QuoteOfTheDay(c *gin.Context) {
	quote, err := h.quotes.Today(c.Request.Context())
	switch {
	case errors.Is(err, services.ErrNoQuotes):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "no quotes configured")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		ok(c, http.StatusOK, quote)
	}
}

// EngageQuote handles POST /quotes/:id/engage. Engagement is an upsert on
// (user, quote, day); never a wellness-state change.
func (h *Handlers) EngageQuote(c *gin.Context) {
	var req QuoteEngagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	engagement, err := h.quotes.Engage(c.Request.Context(), userID(c), c.Param("id"), services.QuoteEngagementInput{
		Viewed:           req.Viewed,
		Liked:            req.Liked,
		Shared:           req.Shared,
		TimeSpentSeconds: req.TimeSpentSeconds,
		Rating:           req.Rating,
	})
	switch {
	case errors.Is(err, services.ErrQuoteNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "quote not found")
	case errors.Is(err, services.ErrInvalidRating):
		failFields(c, "validation failed", []FieldError{{Field: "rating", Message: "rating must be between 1 and 5"}})
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		ok(c, http.StatusOK, engagement)
	}
}

// QuoteHistory handles GET /quotes/history for the current user.
func (h *Handlers) QuoteHistory(c *gin.Context) {
	limit := utils.AtoiDefault(c.Query("limit"), 30)
	items, err := h.quotes.History(c.Request.Context(), userID(c), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}
