package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/bettercallhenk/contact-backend/internal/config"
	"github.com/bettercallhenk/contact-backend/internal/notify"
	"github.com/bettercallhenk/contact-backend/internal/ratelimit"
)

func testConfig() config.Config {
	return config.Config{
		RateRPS:   100,
		RateBurst: 10,
		Contact: config.ContactConfig{
			RateMax:            5,
			RateWindow:         time.Hour,
			MinFillTime:        5 * time.Second,
			RecaptchaThreshold: 0.5,
			RecaptchaTimeout:   time.Second,
		},
		CORS:     config.CORSConfig{},
		Security: config.SecurityConfig{EnableHSTS: false},
		OTEL:     config.OTELConfig{ServiceName: "test-svc"},
	}
}

func newTestRouter(t *testing.T, cfg config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	limiter := ratelimit.New(cfg.Contact.RateMax, cfg.Contact.RateWindow)
	t.Cleanup(limiter.Close)
	sender := &notify.LogSender{Log: zerolog.Nop()}
	RegisterRoutes(r, limiter, sender, cfg)
	return r
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	r := newTestRouter(t, testConfig())

	// /health works
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	// CORS (AllowAllOrigins) sets the wildcard header
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}

	// /metrics is wired
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || len(w.Body.Bytes()) == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	// NoRoute: 404 with the standard envelope
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}
	var env struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("404 body not an envelope: %v", err)
	}
	if env.Success {
		t.Fatal("404 envelope should have success=false")
	}

	// NoMethod: 405 (GET on /api/contact)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/contact", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /api/contact expected 405, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	cfg := testConfig()
	cfg.CORS.AllowedOrigins = []string{"https://example.com"}
	r := newTestRouter(t, cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://example.com")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}

	// Unlisted origins get no ACAO header.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unlisted origin got ACAO %q", got)
	}
}

func TestRegisterRoutes_ContactSmoke(t *testing.T) {
	// No reCAPTCHA secret configured: every verification is inconclusive and
	// the pipeline fails open, so a plausible human submission is accepted.
	r := newTestRouter(t, testConfig())

	body := fmt.Sprintf(`{
		"name": "Anna Schmidt",
		"email": "anna@example.com",
		"phone": "0160 1234567",
		"message": "Wir heiraten im Sommer und suchen noch einen Fotografen.",
		"form_loaded_at": "%d"
	}`, time.Now().Add(-time.Minute).UnixMilli())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("POST /api/contact = %d body=%s", w.Code, w.Body.String())
	}
	var env struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !env.Success || env.Message == "" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	// Request correlation id from the middleware stack.
	if rid := w.Header().Get("X-Request-ID"); rid == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
	// Sensitive responses must not be cacheable.
	if cc := w.Header().Get("Cache-Control"); cc != "no-store" {
		t.Fatalf("Cache-Control = %q, want no-store", cc)
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// tiny cap to trigger MaxBytesReader
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")) // 12 bytes
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}
