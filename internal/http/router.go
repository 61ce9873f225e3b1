// Package httpapi wires the HTTP transport (Gin) to the contact pipeline,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, and edge rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID, logging, recovery)
//   - Deterministic, minimal router setup; all stateful dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/bettercallhenk/contact-backend/internal/config"
	"github.com/bettercallhenk/contact-backend/internal/http/handlers"
	"github.com/bettercallhenk/contact-backend/internal/http/middleware"
	"github.com/bettercallhenk/contact-backend/internal/notify"
	"github.com/bettercallhenk/contact-backend/internal/ratelimit"
	"github.com/bettercallhenk/contact-backend/internal/recaptcha"
	"github.com/bettercallhenk/contact-backend/internal/services"
)

// maxBodyBytes caps contact-form request bodies. The largest legitimate
// payload is a few KiB of text fields; 64 KiB leaves generous headroom.
const maxBodyBytes = 64 << 10

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. The submission limiter and the notification sender are injected
// because they own background resources (sweeper goroutine, SMTP dialing)
// whose lifecycle belongs to the entrypoint; the verifier and classifier are
// stateless and built here from configuration.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip compression
//  7. Metrics
//  8. Edge rate limiter (token bucket per IP, all routes)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, limiter *ratelimit.Limiter, sender notify.Sender, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction. Contact submissions carry names,
	// emails, and phone numbers; none of that belongs in log output.
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit
	r.Use(limitBody(maxBodyBytes))

	// 6) Response compression
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per IP across all routes. This is a coarse
	// flood gate; the per-window submission limiter inside the contact
	// handler enforces the business quota.
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Accept-Language"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Retry-After"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Accept-Language"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Retry-After"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS).
	// NoStore because every response on this API is about a specific
	// submission and must not be cached.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: handler collaborators from configuration
	verifier := recaptcha.New(cfg.Contact.RecaptchaSecret, cfg.Contact.RecaptchaTimeout)
	classifier := &services.Classifier{
		MinFillTime:         cfg.Contact.MinFillTime,
		ScoreThreshold:      cfg.Contact.RecaptchaThreshold,
		RequireVerification: cfg.Contact.RecaptchaRequired,
	}
	h := handlers.New(limiter, verifier, classifier, sender, cfg.Contact.RateWindow)

	// Public API
	api := r.Group("/api")
	{
		api.POST("/contact", h.Contact)
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
