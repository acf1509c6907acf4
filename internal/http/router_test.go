package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/harborwell/wellness-backend/internal/analytics"
	"github.com/harborwell/wellness-backend/internal/config"
	"github.com/harborwell/wellness-backend/internal/http/middleware"
	"github.com/harborwell/wellness-backend/internal/index"
	"github.com/harborwell/wellness-backend/internal/repo"
	"github.com/harborwell/wellness-backend/internal/services"
)

const apiSecret = "router-test-secret"

type apiFixture struct {
	db     *gorm.DB
	engine *gin.Engine
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"),
		&gorm.Config{Logger: glogger.Default.LogMode(glogger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	words := index.NewWriter(db, zerolog.Nop())
	locks := services.NewUserLocks(0)
	deps := Deps{
		DB:        db,
		Checkins:  &services.CheckinService{DB: db, Locks: locks, Index: words},
		Journals:  &services.JournalService{DB: db, Index: words},
		Surveys:   &services.SurveyService{DB: db, Locks: locks, Index: words},
		Quotes:    &services.QuoteService{DB: db},
		Wellness:  &services.WellnessService{DB: db},
		Analytics: &analytics.Service{DB: db},
		Words:     words,
	}
	cfg := config.Config{
		JWTSecret:   apiSecret,
		APIBasePath: "/api/v1",
		RateRPS:     1000,
		RateBurst:   1000,
	}
	cfg.OTEL.ServiceName = "wellness-backend-test"

	engine := gin.New()
	RegisterRoutes(engine, deps, cfg)
	return &apiFixture{db: db, engine: engine}
}

// seed creates an active user with the given role and returns its id and a
// bearer token for it.
func (f *apiFixture) seed(t *testing.T, role, department string) (string, string) {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), f.db, role+"."+t.Name()+"@harborwell.test", "Router Test", department, role)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	tok, err := middleware.IssueToken([]byte(apiSecret), middleware.AuthClaims{
		UserID:     u.ID,
		Role:       role,
		Department: department,
	})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return u.ID, tok
}

func (f *apiFixture) do(t *testing.T, method, path, token string, payload any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	var env map[string]any
	if len(w.Body.Bytes()) > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func TestRouter_HealthIsOpen(t *testing.T) {
	f := newAPI(t)
	w, body := f.do(t, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health: %d %v", w.Code, body)
	}
}

func TestRouter_APIRequiresToken(t *testing.T) {
	f := newAPI(t)
	w, body := f.do(t, http.MethodGet, "/api/v1/checkins", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", w.Code)
	}
	if body["success"] != false || body["code"] != "unauthorized" {
		t.Fatalf("envelope: %v", body)
	}
}

func TestRouter_CheckInLifecycle(t *testing.T) {
	f := newAPI(t)
	_, tok := f.seed(t, "employee", "engineering")

	// No check-in yet.
	w, _ := f.do(t, http.MethodGet, "/api/v1/checkins/today", tok, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("today before check-in: %d", w.Code)
	}

	w, env := f.do(t, http.MethodPost, "/api/v1/checkins", tok, gin.H{"mood": 4, "feedback": "good sprint"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	if env["success"] != true || env["data"] == nil {
		t.Fatalf("success envelope: %v", env)
	}

	// Same day again.
	w, env = f.do(t, http.MethodPost, "/api/v1/checkins", tok, gin.H{"mood": 2})
	if w.Code != http.StatusConflict || env["code"] != "already_checked_in" {
		t.Fatalf("duplicate: %d %v", w.Code, env)
	}

	w, env = f.do(t, http.MethodGet, "/api/v1/checkins/today", tok, nil)
	if w.Code != http.StatusOK || env["success"] != true {
		t.Fatalf("today after check-in: %d %v", w.Code, env)
	}

	w, env = f.do(t, http.MethodGet, "/api/v1/wellness", tok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("wellness state: %d %v", w.Code, env)
	}
}

func TestRouter_ValidationEnvelope(t *testing.T) {
	f := newAPI(t)
	_, tok := f.seed(t, "employee", "engineering")

	w, env := f.do(t, http.MethodPost, "/api/v1/checkins", tok, gin.H{"mood": 9})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}
	if env["code"] != "validation_failed" {
		t.Fatalf("code: %v", env)
	}
	fields, ok := env["errors"].([]any)
	if !ok || len(fields) != 1 {
		t.Fatalf("errors: %v", env)
	}
	first, _ := fields[0].(map[string]any)
	if first["field"] != "mood" {
		t.Fatalf("field: %v", first)
	}
}

func TestRouter_AnalyticsRoleGate(t *testing.T) {
	f := newAPI(t)
	_, employee := f.seed(t, "employee", "engineering")
	_, manager := f.seed(t, "manager", "engineering")
	_, hr := f.seed(t, "hr", "people")

	for name, tok := range map[string]string{"employee": employee, "manager": manager} {
		w, env := f.do(t, http.MethodGet, "/api/v1/analytics/company-overview", tok, nil)
		if w.Code != http.StatusForbidden || env["code"] != "forbidden" {
			t.Fatalf("%s through analytics gate: %d %v", name, w.Code, env)
		}
	}

	w, env := f.do(t, http.MethodGet, "/api/v1/analytics/company-overview", hr, nil)
	if w.Code != http.StatusOK || env["success"] != true {
		t.Fatalf("hr overview: %d %v", w.Code, env)
	}

	// Oversized window is rejected before any aggregation.
	w, env = f.do(t, http.MethodGet, "/api/v1/analytics/company-overview?from=2024-01-01&to=2025-06-01", hr, nil)
	if w.Code != http.StatusBadRequest || env["code"] != "window_too_large" {
		t.Fatalf("window: %d %v", w.Code, env)
	}
}

func TestRouter_WordAnalyticsBackfillIsAdminOnly(t *testing.T) {
	f := newAPI(t)
	_, hr := f.seed(t, "hr", "people")
	_, admin := f.seed(t, "admin", "it")

	// hr can read the word index.
	w, env := f.do(t, http.MethodGet, "/api/v1/word-analytics/summary", hr, nil)
	if w.Code != http.StatusOK || env["success"] != true {
		t.Fatalf("hr summary: %d %v", w.Code, env)
	}

	w, env = f.do(t, http.MethodPost, "/api/v1/word-analytics/process-existing", hr, nil)
	if w.Code != http.StatusForbidden || env["code"] != "forbidden" {
		t.Fatalf("hr backfill: %d %v", w.Code, env)
	}

	w, env = f.do(t, http.MethodPost, "/api/v1/word-analytics/process-existing", admin, nil)
	if w.Code != http.StatusOK || env["success"] != true {
		t.Fatalf("admin backfill: %d %v", w.Code, env)
	}
}

func TestRouter_FallbackEnvelopes(t *testing.T) {
	f := newAPI(t)
	_, tok := f.seed(t, "employee", "engineering")

	w, env := f.do(t, http.MethodGet, "/api/v1/nope", tok, nil)
	if w.Code != http.StatusNotFound || env["code"] != "not_found" {
		t.Fatalf("no route: %d %v", w.Code, env)
	}

	w, env = f.do(t, http.MethodDelete, "/api/v1/checkins", tok, nil)
	if w.Code != http.StatusMethodNotAllowed || env["code"] != "method_not_allowed" {
		t.Fatalf("no method: %d %v", w.Code, env)
	}
}
