package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// captureLogs swaps the global logger for a buffer for the test's lifetime.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

func get(r *gin.Engine, path string, header map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/rid", func(c *gin.Context) {
		if v, ok := c.Get(requestIDKey); !ok || v == "" {
			t.Fatal("request id not set in context")
		}
		c.Status(http.StatusNoContent)
	})

	// Minted when absent.
	if w := get(r, "/rid", nil); w.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected a generated request id")
	}

	// Propagated when present, regardless of header casing.
	w := get(r, "/rid", map[string]string{strings.ToLower(requestIDHeader): "abc-123"})
	if got := w.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("propagated id = %q", got)
	}
}

func TestLogger_LevelsAndPathFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t)

	r := gin.New()
	r.Use(RequestID(), Logger())
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "hello") })
	r.GET("/err", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
		c.Status(http.StatusBadRequest)
	})

	if w := get(r, "/ok", nil); w.Code != http.StatusOK {
		t.Fatalf("/ok: %d", w.Code)
	}
	if w := get(r, "/missing", nil); w.Code != http.StatusNotFound {
		t.Fatalf("/missing: %d", w.Code)
	}
	if w := get(r, "/err", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("/err: %d", w.Code)
	}

	logs := buf.String()
	if !strings.Contains(logs, `"level":"info"`) || !strings.Contains(logs, `"path":"/ok"`) {
		t.Fatalf("missing info log with route path:\n%s", logs)
	}
	// Unmatched routes log the raw URL path at warn.
	if !strings.Contains(logs, `"level":"warn"`) || !strings.Contains(logs, `"path":"/missing"`) {
		t.Fatalf("missing warn log with fallback path:\n%s", logs)
	}
	// Collected Gin errors force error level even on a 4xx.
	if !strings.Contains(logs, `"level":"error"`) || !strings.Contains(logs, "boom") {
		t.Fatalf("missing error log:\n%s", logs)
	}
}

func TestRecovery_JSONEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t)

	r := gin.New()
	r.Use(RequestID(), Logger(), Recovery())
	r.GET("/panic", func(*gin.Context) { panic("kaboom") })

	w := get(r, "/panic", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body["success"] != false || body["code"] != "internal_error" {
		t.Fatalf("body: %v", body)
	}
	if body["request_id"] == "" {
		t.Fatal("request id missing from error body")
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Fatalf("missing panic log:\n%s", buf.String())
	}
}

func TestRecovery_PanicAfterWrite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	captureLogs(t)

	r := gin.New()
	r.Use(RequestID(), Logger(), Recovery())
	r.GET("/late", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("late kaboom")
	})

	// Once bytes are out the JSON envelope must not be appended.
	w := get(r, "/late", nil)
	if strings.Contains(w.Body.String(), "internal server error") {
		t.Fatalf("error body written after response started: %q", w.Body.String())
	}
}

func TestLoggerFrom(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Without Logger() the fallback logger carries no request fields.
	buf := captureLogs(t)
	r := gin.New()
	r.GET("/use", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("bare")
		c.Status(http.StatusOK)
	})
	get(r, "/use", nil)
	if !strings.Contains(buf.String(), `"message":"bare"`) {
		t.Fatalf("fallback logger unusable:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), `"request_id"`) {
		t.Fatal("fallback logger unexpectedly request-scoped")
	}

	// With Logger() installed the logger is request-scoped.
	buf = captureLogs(t)
	r = gin.New()
	r.Use(RequestID(), Logger())
	r.GET("/use", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("scoped")
		c.Status(http.StatusOK)
	})
	get(r, "/use", nil)
	if !strings.Contains(buf.String(), `"message":"scoped"`) || !strings.Contains(buf.String(), `"request_id"`) {
		t.Fatalf("request-scoped logger missing fields:\n%s", buf.String())
	}
}

func TestTruncateAndAsString(t *testing.T) {
	if asString("x") != "x" || asString(123) != "" || asString(nil) != "" {
		t.Fatal("asString")
	}
	if truncate("hello", 10) != "hello" {
		t.Fatal("truncate should be a no-op under the cap")
	}
	if got := truncate("abcdefgh", 5); got != "abcde…" {
		t.Fatalf("truncate = %q", got)
	}
	if truncate("abc", 0) != "abc" {
		t.Fatal("cap <= 0 must disable truncation")
	}
}
