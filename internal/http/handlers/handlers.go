package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/harborwell/wellness-backend/internal/analytics"
	"github.com/harborwell/wellness-backend/internal/http/middleware"
	"github.com/harborwell/wellness-backend/internal/index"
	"github.com/harborwell/wellness-backend/internal/services"
	"github.com/harborwell/wellness-backend/internal/utils"
)

// Handlers groups the HTTP endpoints. Transport concerns stay here; all
// business rules live in the services and analytics layers.
type Handlers struct {
	db        *gorm.DB
	checkins  *services.CheckinService
	journals  *services.JournalService
	surveys   *services.SurveyService
	quotes    *services.QuoteService
	wellness  *services.WellnessService
	analytics *analytics.Service
	words     *index.Writer
}

// New constructs a Handlers instance bound to the given services. The db
// handle serves the notification listing, which has no service of its own.
func New(
	db *gorm.DB,
	checkins *services.CheckinService,
	journals *services.JournalService,
	surveys *services.SurveyService,
	quotes *services.QuoteService,
	wellness *services.WellnessService,
	analyticsSvc *analytics.Service,
	words *index.Writer,
) *Handlers {
	return &Handlers{
		db:        db,
		checkins:  checkins,
		journals:  journals,
		surveys:   surveys,
		quotes:    quotes,
		wellness:  wellness,
		analytics: analyticsSvc,
		words:     words,
	}
}

// userID extracts the authenticated user id set by the auth middleware.
func userID(c *gin.Context) string {
	if v, ok := c.Get(middleware.CtxUserID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// department extracts the caller's department claim.
func department(c *gin.Context) string {
	if v, ok := c.Get(middleware.CtxDepartment); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// parseWindow reads optional from/to query params as YYYY-MM-DD dates. Zero
// values mean "use the aggregate layer's default window".
func parseWindow(c *gin.Context) (from, to time.Time, ok bool) {
	var err error
	if v := c.Query("from"); v != "" {
		if from, err = utils.ParseDay(v); err != nil {
			return from, to, false
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = utils.ParseDay(v); err != nil {
			return from, to, false
		}
		// inclusive end of day
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	return from, to, true
}
