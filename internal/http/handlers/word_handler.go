package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harborwell/wellness-backend/internal/analytics"
	"github.com/harborwell/wellness-backend/internal/utils"
)

func cloudFilter(c *gin.Context) (analytics.WordCloudFilter, bool) {
	from, to, valid := parseWindow(c)
	if !valid {
		return analytics.WordCloudFilter{}, false
	}
	f := analytics.WordCloudFilter{
		From:           from,
		To:             to,
		MinOccurrences: utils.AtoiDefault(c.Query("min_occurrences"), 1),
		Limit:          utils.AtoiDefault(c.Query("limit"), 50),
	}
	if v := c.Query("departments"); v != "" {
		f.Departments = strings.Split(v, ",")
	}
	if v := c.Query("sources"); v != "" {
		f.SourceKinds = strings.Split(v, ",")
	}
	return f, true
}

// WordCloud handles GET /word-analytics/word-cloud.
func (h *Handlers) WordCloud(c *gin.Context) {
	f, valid := cloudFilter(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "from/to must be YYYY-MM-DD")
		return
	}
	cloud, err := h.analytics.Cloud(c.Request.Context(), f)
	if err != nil {
		analyticsError(c, err)
		return
	}
	ok(c, http.StatusOK, cloud)
}

// UserWordCloud handles GET /word-analytics/users/:userId/word-cloud.
func (h *Handlers) UserWordCloud(c *gin.Context) {
	f, valid := cloudFilter(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "from/to must be YYYY-MM-DD")
		return
	}
	f.UserID = c.Param("userId")
	cloud, err := h.analytics.Cloud(c.Request.Context(), f)
	if err != nil {
		analyticsError(c, err)
		return
	}
	ok(c, http.StatusOK, cloud)
}

// DepartmentTrends handles GET /word-analytics/departments/:department/trends.
func (h *Handlers) DepartmentTrends(c *gin.Context) {
	from, to, valid := parseWindow(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "from/to must be YYYY-MM-DD")
		return
	}
	trends, err := h.analytics.Trends(c.Request.Context(), c.Param("department"), from, to)
	if err != nil {
		analyticsError(c, err)
		return
	}
	ok(c, http.StatusOK, trends)
}

// WordSummary handles GET /word-analytics/summary.
func (h *Handlers) WordSummary(c *gin.Context) {
	from, to, valid := parseWindow(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "from/to must be YYYY-MM-DD")
		return
	}
	summary, err := h.analytics.Summary(c.Request.Context(), from, to)
	if err != nil {
		analyticsError(c, err)
		return
	}
	ok(c, http.StatusOK, summary)
}

// WordThemes handles GET /word-analytics/themes: the theme slice of the
// index summary.
func (h *Handlers) WordThemes(c *gin.Context) {
	from, to, valid := parseWindow(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "from/to must be YYYY-MM-DD")
		return
	}
	summary, err := h.analytics.Summary(c.Request.Context(), from, to)
	if err != nil {
		analyticsError(c, err)
		return
	}
	ok(c, http.StatusOK, summary.Themes)
}

// ProcessExisting handles POST /word-analytics/process-existing: rebuilds
// the word index from historical events. Admin only; the pass is idempotent.
func (h *Handlers) ProcessExisting(c *gin.Context) {
	result, err := h.words.Backfill(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, result)
}
