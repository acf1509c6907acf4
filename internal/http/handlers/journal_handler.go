package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harborwell/wellness-backend/internal/services"
)

// JournalRequest is the JSON payload for creating or updating an entry.
type JournalRequest struct {
	Title    string   `json:"title" binding:"required,min=1,max=255"`
	Body     string   `json:"body" binding:"required"`
	Mood     int      `json:"mood" binding:"required"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Privacy  string   `json:"privacy"`
}

func (r JournalRequest) input() services.JournalInput {
	return services.JournalInput{
		Title:    r.Title,
		Body:     r.Body,
		Mood:     r.Mood,
		Category: r.Category,
		Tags:     r.Tags,
		Privacy:  r.Privacy,
	}
}

func journalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidMood):
		failFields(c, "validation failed", []FieldError{{Field: "mood", Message: "mood must be between 1 and 5"}})
	case errors.Is(err, services.ErrInvalidPrivacy):
		failFields(c, "validation failed", []FieldError{{Field: "privacy", Message: "unknown privacy level"}})
	case errors.Is(err, services.ErrJournalNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "journal entry not found")
	case errors.Is(err, services.ErrJournalLocked):
		fail(c, http.StatusConflict, ErrCodeJournalLocked, "journal entries are editable for 24 hours")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// CreateJournal handles POST /journals.
func (h *Handlers) CreateJournal(c *gin.Context) {
	var req JournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	entry, err := h.journals.Create(c.Request.Context(), userID(c), req.input())
	if err != nil {
		journalError(c, err)
		return
	}
	ok(c, http.StatusCreated, entry)
}

// ListJournals handles GET /journals (paginated, current user only).
func (h *Handlers) ListJournals(c *gin.Context) {
	page, pageSize := clampPagination(c)
	items, total, err := h.journals.ListPage(c.Request.Context(), userID(c), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{
		"entries":   items,
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	})
}

// UpdateJournal handles PUT /journals/:id. Entries are immutable after the
// 24-hour edit window.
func (h *Handlers) UpdateJournal(c *gin.Context) {
	var req JournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	entry, err := h.journals.Update(c.Request.Context(), userID(c), c.Param("id"), req.input())
	if err != nil {
		journalError(c, err)
		return
	}
	ok(c, http.StatusOK, entry)
}

// DeleteJournal handles DELETE /journals/:id (soft delete).
func (h *Handlers) DeleteJournal(c *gin.Context) {
	if err := h.journals.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		journalError(c, err)
		return
	}
	noContent(c)
}

// JournalStats handles GET /journals/stats for the current user.
func (h *Handlers) JournalStats(c *gin.Context) {
	stats, err := h.journals.Stats(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, stats)
}
