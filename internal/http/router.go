// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, authentication, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Explicit role gating per route group
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/harborwell/wellness-backend/internal/analytics"
	"github.com/harborwell/wellness-backend/internal/config"
	"github.com/harborwell/wellness-backend/internal/http/handlers"
	"github.com/harborwell/wellness-backend/internal/http/middleware"
	"github.com/harborwell/wellness-backend/internal/index"
	"github.com/harborwell/wellness-backend/internal/services"
)

// Deps carries the constructed application services into the router. The
// caller (cmd/server, tests) owns their lifecycles.
type Deps struct {
	DB        *gorm.DB
	Checkins  *services.CheckinService
	Journals  *services.JournalService
	Surveys   *services.SurveyService
	Quotes    *services.QuoteService
	Wellness  *services.WellnessService
	Analytics *analytics.Service
	Words     *index.Writer
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), authentication and
// rate limiting, CORS and security headers, health and metrics endpoints, and
// then mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Bearer auth (adds user identity for the rate-limit key)
//  8. Rate limiter (per user/IP)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"Authorization",
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health (unauthenticated)
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	h := handlers.New(deps.DB, deps.Checkins, deps.Journals, deps.Surveys,
		deps.Quotes, deps.Wellness, deps.Analytics, deps.Words)

	// Public API: every endpoint authenticated, then rate limited per user
	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(middleware.Auth([]byte(cfg.JWTSecret)))
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	api.Use(rl.Handler())
	{
		// Check-ins and wellness state
		api.POST("/checkins", h.CreateCheckIn)
		api.GET("/checkins", h.ListCheckIns)
		api.GET("/checkins/today", h.TodayCheckIn)
		api.GET("/checkins/trend", h.CheckInTrend)
		api.GET("/checkins/stats", h.CheckInStats)
		api.GET("/wellness", h.WellnessState)

		// Surveys
		api.GET("/surveys", h.ListSurveys)
		api.GET("/surveys/:id", h.GetSurvey)
		api.POST("/surveys/:id/responses", h.SubmitSurveyResponse)

		// Journals
		api.POST("/journals", h.CreateJournal)
		api.GET("/journals", h.ListJournals)
		api.GET("/journals/stats", h.JournalStats)
		api.PUT("/journals/:id", h.UpdateJournal)
		api.DELETE("/journals/:id", h.DeleteJournal)

		// Quotes
		api.GET("/quotes/today", h.QuoteOfTheDay)
		api.GET("/quotes/history", h.QuoteHistory)
		api.POST("/quotes/:id/engage", h.EngageQuote)

		// Leaderboards (any authenticated user)
		api.GET("/leaderboard/happy-coins", h.HappyCoinsLeaderboard)
		api.GET("/leaderboard/department/:department", h.DepartmentLeaderboard)
		api.GET("/leaderboard/user/:userId", h.UserLeaderboard)

		// Notifications
		api.GET("/notifications", h.ListNotifications)
		api.POST("/notifications/:id/read", h.MarkNotificationRead)

		// Company analytics (hr and admin)
		hr := api.Group("/analytics", middleware.RequireRoles("hr", "admin"))
		{
			hr.GET("/company-overview", h.CompanyOverview)
			hr.GET("/department/:department", h.DepartmentAnalytics)
			hr.GET("/risk-assessment", h.RiskAssessment)
			hr.GET("/engagement", h.EngagementMetrics)
			hr.GET("/enps", h.ENPS)
			hr.GET("/sentiment", h.SentimentDashboard)
			hr.GET("/dashboard", h.Dashboard)
			hr.GET("/demographics", h.Demographics)
			hr.GET("/export", h.Export)
		}

		// Word analytics (hr/admin reads, admin-only backfill)
		words := api.Group("/word-analytics", middleware.RequireRoles("hr", "admin"))
		{
			words.GET("/word-cloud", h.WordCloud)
			words.GET("/users/:userId/word-cloud", h.UserWordCloud)
			words.GET("/departments/:department/trends", h.DepartmentTrends)
			words.GET("/summary", h.WordSummary)
			words.GET("/themes", h.WordThemes)
			words.POST("/process-existing", middleware.RequireRoles("admin"), h.ProcessExisting)
		}
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
