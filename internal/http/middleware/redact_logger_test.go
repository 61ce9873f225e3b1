package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func withCapturedLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf) // plain JSON lines
	return &buf
}

func TestRedactingLogger_InfoAndRedactions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	buf := withCapturedLogger(t)

	// Simulate upstream RequestID middleware that sets response header
	r.Use(func(c *gin.Context) {
		c.Header("X-Request-ID", "rid-resp")
		c.Next()
	})
	// Our logger with a custom masked header
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))

	r.POST("/api/contact", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	// Build a request containing PII in query and headers.
	// Raw query is redacted with regex (no parsing), so simple occurrences are enough.
	q := "email=a.b+tag@example.com&phone=0160-1234567&id=123e4567-e89b-12d3-a456-426614174000"
	req := httptest.NewRequest(http.MethodPost, "/api/contact?"+q, nil)
	// Built-in sensitive headers
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Cookie", "sid=topsecret")
	// Custom masked header
	req.Header.Set("X-Api-Key", "shhh")
	// Header with PII that should be pattern-redacted (not fully masked)
	req.Header.Set("X-Custom", "email a@b.com id=123e4567-e89b-12d3-a456-426614174000 phone 555-123-4567")
	// Also set a request header request-id; response header should still win
	req.Header.Set("X-Request-ID", "rid-req")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	logs := buf.String()
	if !strings.Contains(logs, `"level":"info"`) {
		t.Fatalf("expected info log, got: %s", logs)
	}
	if !strings.Contains(logs, `"path":"/api/contact"`) {
		t.Fatalf("expected route path, got: %s", logs)
	}
	// request id prefers response header
	if !strings.Contains(logs, `"request_id":"rid-resp"`) {
		t.Fatalf("expected request_id from response header, got: %s", logs)
	}
	// query redactions
	if !strings.Contains(logs, `[REDACTED:email]`) || !strings.Contains(logs, `[REDACTED:phone]`) || !strings.Contains(logs, `[REDACTED:id]`) {
		t.Fatalf("expected query redactions, got: %s", logs)
	}
	// header masking for built-ins and custom
	if !strings.Contains(logs, `"Authorization":"[REDACTED]"`) {
		t.Fatalf("Authorization must be masked: %s", logs)
	}
	if !strings.Contains(logs, `"Cookie":"[REDACTED]"`) {
		t.Fatalf("Cookie must be masked: %s", logs)
	}
	if !strings.Contains(logs, `"X-Api-Key":"[REDACTED]"`) {
		t.Fatalf("X-Api-Key must be masked: %s", logs)
	}
	// pattern redactions inside non-masked header
	if !strings.Contains(logs, `"X-Custom":"email [REDACTED:email] id=[REDACTED:id] phone [REDACTED:phone]"`) {
		t.Fatalf("expected redacted X-Custom header, got: %s", logs)
	}
}

func TestRedactingLogger_GermanPhoneForms(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Every spelling the contact form's phone field accepts must be
	// unrecognizable in the access log.
	spellings := []string{
		"+49 160 1234567",
		"0049 160 1234567",
		"0160 1234567",
		"0160-1234567",
		"(030) 901820",
	}
	for _, phone := range spellings {
		t.Run(phone, func(t *testing.T) {
			r := gin.New()
			buf := withCapturedLogger(t)
			r.Use(RedactingLogger(RedactOptions{}))
			r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/ok", nil)
			req.Header.Set("X-Custom", "call me at "+phone)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			logs := buf.String()
			if !strings.Contains(logs, "[REDACTED:phone]") {
				t.Fatalf("phone %q survived redaction: %s", phone, logs)
			}
			digits := strings.Map(func(r rune) rune {
				if r >= '0' && r <= '9' {
					return r
				}
				return -1
			}, phone)
			if strings.Contains(logs, digits[len(digits)-7:]) {
				t.Fatalf("phone digits leaked into log: %s", logs)
			}
		})
	}
}

func TestRedactingLogger_WarnAndErrorLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	buf := withCapturedLogger(t)
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/client-error", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/server-error", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/client-error", nil))
	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Fatalf("expected warn log for 4xx, got: %s", buf.String())
	}

	buf.Reset()
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/server-error", nil))
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("expected error log for 5xx, got: %s", buf.String())
	}
}

func TestRedactingLogger_AttachesLoggerForHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	_ = withCapturedLogger(t)
	r.Use(RedactingLogger(RedactOptions{}))
	var attached bool
	r.GET("/ok", func(c *gin.Context) {
		_, attached = c.Get("logger")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if !attached {
		t.Fatal("expected request-scoped logger in context")
	}
}
