package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harborwell/wellness-backend/internal/repo"
	"github.com/harborwell/wellness-backend/internal/utils"
)

// ListNotifications handles GET /notifications for the current user, newest
// first.
func (h *Handlers) ListNotifications(c *gin.Context) {
	limit := utils.AtoiDefault(c.Query("limit"), 50)
	items, err := repo.ListNotifications(c.Request.Context(), h.db, userID(c), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// MarkNotificationRead handles POST /notifications/:id/read.
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	if err := repo.MarkNotificationRead(c.Request.Context(), h.db, c.Param("id"), userID(c)); err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "notification not found")
		return
	}
	noContent(c)
}
