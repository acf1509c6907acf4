package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harborwell/wellness-backend/internal/utils"
)

// HappyCoinsLeaderboard handles GET /leaderboard/happy-coins.
func (h *Handlers) HappyCoinsLeaderboard(c *gin.Context) {
	page := utils.AtoiDefault(c.Query("page"), 1)
	limit := utils.AtoiDefault(c.Query("limit"), 0)
	board, err := h.analytics.HappyCoins(c.Request.Context(), "", userID(c), page, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, board)
}

// DepartmentLeaderboard handles GET /leaderboard/department/:department.
func (h *Handlers) DepartmentLeaderboard(c *gin.Context) {
	page := utils.AtoiDefault(c.Query("page"), 1)
	limit := utils.AtoiDefault(c.Query("limit"), 0)
	board, err := h.analytics.HappyCoins(c.Request.Context(), c.Param("department"), userID(c), page, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, board)
}

// UserLeaderboard handles GET /leaderboard/user/:userId: the user's rank
// with a window of neighbors either side.
func (h *Handlers) UserLeaderboard(c *gin.Context) {
	board, err := h.analytics.UserNeighborhood(c.Request.Context(), c.Query("department"), c.Param("userId"))
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		return
	}
	ok(c, http.StatusOK, board)
}
