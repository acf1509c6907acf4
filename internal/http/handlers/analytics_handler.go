package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harborwell/wellness-backend/internal/analytics"
	"github.com/harborwell/wellness-backend/internal/utils"
)

func analyticsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, analytics.ErrWindowTooLarge):
		fail(c, http.StatusBadRequest, ErrCodeWindowTooLarge, "date range exceeds one year")
	case errors.Is(err, analytics.ErrUnknownExportType):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown export type")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// CompanyOverview handles GET /analytics/company-overview.
func (h *Handlers) CompanyOverview(c *gin.Context) {
	from, to, valid := parseWindow(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "from/to must be YYYY-MM-DD")
		return
	}
	overview, err := h.analytics.Overview(c.Request.Context(), from, to)
	if err != nil {
		analyticsError(c, err)
		return
	}
	ok(c, http.StatusOK, overview)
}

// DepartmentAnalytics handles GET /analytics/department/:department.
func (h *Handlers) DepartmentAnalytics(c *gin.Context) {
	from, to, valid := parseWindow(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "from/to must be YYYY-MM-DD")
		return
	}
	include := c.Query("include_individuals") == "true"
	dept, err := h.analytics.Department(c.Request.Context(), c.Param("department"), from, to, include)
	if err != nil {
		analyticsError(c, err)
		return
	}
	ok(c, http.StatusOK, dept)
}

// RiskAssessment handles GET /analytics/risk-assessment.
func (h *Handlers) RiskAssessment(c *gin.Context) {
	assessment, err := h.analytics.AssessRisk(c.Request.Context(), c.Query("riskLevel"), c.Query("department"))
	if err != nil {
		analyticsError(c, err)
		return
	}
	ok(c, http.StatusOK, assessment)
}

// EngagementMetrics handles GET /analytics/engagement?period=N.
func (h *Handlers) EngagementMetrics(c *gin.Context) {
	period := utils.AtoiDefault(c.Query("period"), 30)
	metrics, err := h.analytics.Engagement(c.Request.Context(), period)
	if err != nil {
		analyticsError(c, err)
		return
	}
	ok(c, http.StatusOK, metrics)
}

// ENPS handles GET /analytics/enps.
func (h *Handlers) ENPS(c *gin.Context) {
	from, to, valid := parseWindow(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "from/to must be YYYY-MM-DD")
		return
	}
	result, err := h.analytics.ENPS(c.Request.Context(), from, to, c.Query("department"))
	if err != nil {
		analyticsError(c, err)
		return
	}
	ok(c, http.StatusOK, result)
}

// SentimentDashboard handles GET /analytics/sentiment.
func (h *Handlers) SentimentDashboard(c *gin.Context) {
	from, to, valid := parseWindow(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "from/to must be YYYY-MM-DD")
		return
	}
	dashboard, err := h.analytics.Sentiment(c.Request.Context(), from, to, c.Query("department"))
	if err != nil {
		analyticsError(c, err)
		return
	}
	ok(c, http.StatusOK, dashboard)
}

// Dashboard handles GET /analytics/dashboard: the combined HR landing view.
func (h *Handlers) Dashboard(c *gin.Context) {
	dashboard, err := h.analytics.BuildDashboard(c.Request.Context())
	if err != nil {
		analyticsError(c, err)
		return
	}
	ok(c, http.StatusOK, dashboard)
}

// Demographics handles GET /analytics/demographics.
func (h *Handlers) Demographics(c *gin.Context) {
	demographics, err := h.analytics.BuildDemographics(c.Request.Context())
	if err != nil {
		analyticsError(c, err)
		return
	}
	ok(c, http.StatusOK, demographics)
}

// Export handles GET /analytics/export?type=checkins|employees|summary&format=json.
func (h *Handlers) Export(c *gin.Context) {
	if f := c.DefaultQuery("format", "json"); f != "json" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "only json export is supported")
		return
	}
	from, to, valid := parseWindow(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "from/to must be YYYY-MM-DD")
		return
	}
	export, err := h.analytics.Export(c.Request.Context(), c.Query("type"), from, to)
	if err != nil {
		analyticsError(c, err)
		return
	}
	ok(c, http.StatusOK, export)
}
