// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server timeouts,
// logging, the two rate-limit layers, the classification thresholds, and the
// SMTP notification settings.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// ContactConfig groups the anti-automation pipeline settings.
type ContactConfig struct {
	// Fixed-window limiter on the contact endpoint, keyed by client IP.
	RateMax    int           // CONTACT_RATE_MAX: submissions per window
	RateWindow time.Duration // CONTACT_RATE_WINDOW

	// MinFillTime is the minimum plausible time between form render and
	// submission.
	MinFillTime time.Duration // MIN_FILL_TIME

	// reCAPTCHA verification. An empty secret disables the outbound call
	// entirely (every result is then inconclusive).
	RecaptchaSecret    string        // RECAPTCHA_SECRET
	RecaptchaThreshold float64       // RECAPTCHA_THRESHOLD in [0,1]
	RecaptchaRequired  bool          // RECAPTCHA_REQUIRED: reject on inconclusive
	RecaptchaTimeout   time.Duration // RECAPTCHA_TIMEOUT
}

// SMTPConfig groups the notification delivery settings. An empty To disables
// SMTP delivery; leads are then logged instead.
type SMTPConfig struct {
	Host          string // SMTP_HOST
	Port          int    // SMTP_PORT
	User          string // SMTP_USER
	Pass          string // SMTP_PASS
	SSL           bool   // SMTP_SSL
	From          string // SMTP_FROM (falls back to SMTP_USER)
	To            string // CONTACT_TO
	SubjectPrefix string // SUBJECT_PREFIX
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// Edge rate limiting (token bucket across all routes)
	RateRPS   float64 // RATE_RPS: tokens per second (>= 0)
	RateBurst int     // RATE_BURST: bucket size (>= 1)

	// Contact pipeline
	Contact ContactConfig

	// Notification delivery
	SMTP SMTPConfig

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// Edge rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Contact pipeline
		Contact: ContactConfig{
			RateMax:            getint("CONTACT_RATE_MAX", 5),
			RateWindow:         getdur("CONTACT_RATE_WINDOW", time.Hour),
			MinFillTime:        getdur("MIN_FILL_TIME", 5*time.Second),
			RecaptchaSecret:    getenv("RECAPTCHA_SECRET", ""),
			RecaptchaThreshold: getfloat("RECAPTCHA_THRESHOLD", 0.5),
			RecaptchaRequired:  getbool("RECAPTCHA_REQUIRED", false),
			RecaptchaTimeout:   getdur("RECAPTCHA_TIMEOUT", 3*time.Second),
		},

		// Notification delivery
		SMTP: SMTPConfig{
			Host:          getenv("SMTP_HOST", "localhost"),
			Port:          getint("SMTP_PORT", 587),
			User:          getenv("SMTP_USER", ""),
			Pass:          getenv("SMTP_PASS", ""),
			SSL:           getbool("SMTP_SSL", false),
			From:          getenv("SMTP_FROM", ""),
			To:            getenv("CONTACT_TO", ""),
			SubjectPrefix: getenv("SUBJECT_PREFIX", "[Kontakt]"),
		},

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "contact-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Contact.RateMax < 1 {
		return cfg, errors.New("CONTACT_RATE_MAX must be >= 1")
	}
	if cfg.Contact.RateWindow <= 0 {
		return cfg, errors.New("CONTACT_RATE_WINDOW must be > 0")
	}
	if cfg.Contact.MinFillTime < 0 {
		return cfg, errors.New("MIN_FILL_TIME must be >= 0")
	}
	if cfg.Contact.RecaptchaThreshold < 0 || cfg.Contact.RecaptchaThreshold > 1 {
		return cfg, errors.New("RECAPTCHA_THRESHOLD must be between 0 and 1")
	}
	if cfg.Contact.RecaptchaTimeout <= 0 {
		return cfg, errors.New("RECAPTCHA_TIMEOUT must be > 0")
	}
	if cfg.SMTP.To != "" {
		if strings.TrimSpace(cfg.SMTP.Host) == "" {
			return cfg, errors.New("SMTP_HOST must not be empty when CONTACT_TO is set")
		}
		if cfg.SMTP.Port < 1 || cfg.SMTP.Port > 65535 {
			return cfg, errors.New("SMTP_PORT must be a valid port")
		}
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
