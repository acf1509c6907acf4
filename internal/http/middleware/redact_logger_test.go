package middleware

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRedactingLogger_ScrubsQueryAndHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))
	r.GET("/users/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	q := "email=a.b+tag@example.com&phone=+1-555-123-4567&id=123e4567-e89b-12d3-a456-426614174000"
	w := get(r, "/users/123?"+q, map[string]string{
		"Authorization": "Bearer secret",
		"Cookie":        "sid=topsecret",
		"X-Api-Key":     "shhh",
		"X-Custom":      "email a@b.com id=123e4567-e89b-12d3-a456-426614174000 phone 555-123-4567",
		requestIDHeader: "rid-1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}

	logs := buf.String()
	if !strings.Contains(logs, `"level":"info"`) {
		t.Fatalf("expected info log:\n%s", logs)
	}
	// The route pattern, not the raw URL, is the path label.
	if !strings.Contains(logs, `"path":"/users/:id"`) {
		t.Fatalf("path label:\n%s", logs)
	}
	if !strings.Contains(logs, `"request_id":"rid-1"`) {
		t.Fatalf("request id missing:\n%s", logs)
	}
	for _, marker := range []string{"[REDACTED:email]", "[REDACTED:phone]", "[REDACTED:id]"} {
		if !strings.Contains(logs, marker) {
			t.Fatalf("query not scrubbed (%s):\n%s", marker, logs)
		}
	}
	for _, h := range []string{"Authorization", "Cookie", "X-Api-Key"} {
		if !strings.Contains(logs, `"`+h+`":"[REDACTED]"`) {
			t.Fatalf("%s must be fully masked:\n%s", h, logs)
		}
	}
	// Non-masked headers get pattern scrubbing, not wholesale masking.
	if !strings.Contains(logs, `"X-Custom":"email [REDACTED:email] id=[REDACTED:id] phone [REDACTED:phone]"`) {
		t.Fatalf("X-Custom not scrubbed:\n%s", logs)
	}
	// Raw PII must never appear.
	for _, leak := range []string{"a.b+tag@example.com", "Bearer secret", "topsecret", "shhh"} {
		if strings.Contains(logs, leak) {
			t.Fatalf("leaked %q:\n%s", leak, logs)
		}
	}
}

func TestRedactingLogger_Levels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t)

	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{}))
	r.GET("/warn", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/error", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	get(r, "/warn", nil)
	get(r, "/error", nil)

	logs := buf.String()
	if !strings.Contains(logs, `"level":"warn"`) {
		t.Fatalf("missing warn log:\n%s", logs)
	}
	if !strings.Contains(logs, `"level":"error"`) {
		t.Fatalf("missing error log:\n%s", logs)
	}
}

func TestScrub(t *testing.T) {
	got := scrub("reach me at jo@corp.io or (212) 555-1212, ref 123e4567-e89b-12d3-a456-426614174000")
	if strings.Contains(got, "jo@corp.io") || strings.Contains(got, "555-1212") || strings.Contains(got, "123e4567") {
		t.Fatalf("scrub left PII: %q", got)
	}
	if scrub("") != "" {
		t.Fatal("empty input must pass through")
	}
}
