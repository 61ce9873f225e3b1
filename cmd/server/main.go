// Command server runs the contact-form backend.
//
// Startup order: load environment, configure logging, initialize tracing,
// construct the submission limiter and the lead sender, wire the Gin router,
// then serve until SIGINT/SIGTERM triggers a graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bettercallhenk/contact-backend/internal/config"
	httpapi "github.com/bettercallhenk/contact-backend/internal/http"
	"github.com/bettercallhenk/contact-backend/internal/notify"
	"github.com/bettercallhenk/contact-backend/internal/observability"
	"github.com/bettercallhenk/contact-backend/internal/ratelimit"
	"github.com/bettercallhenk/contact-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Info().Str("version", version).Str("port", cfg.Port).Msg("starting contact backend")

	ctx := context.Background()
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	// Per-address submission quota for the contact endpoint. Owns a sweeper
	// goroutine, so its lifecycle stays here.
	limiter := ratelimit.New(cfg.Contact.RateMax, cfg.Contact.RateWindow)
	defer limiter.Close()

	sender := newSender(cfg)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, limiter, sender, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal().Err(err).Msg("server failed")
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	// Drain in-flight requests; pending lead notifications run on their own
	// timeout and are not tied to the HTTP server.
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown failed")
	}
	log.Info().Msg("stopped")
}

// newSender picks the lead delivery mechanism. Without a configured
// recipient there is nothing to deliver to, so leads go to the log; that
// keeps local development working with zero SMTP setup.
func newSender(cfg config.Config) notify.Sender {
	if cfg.SMTP.To == "" {
		log.Warn().Msg("CONTACT_TO not set; leads will be logged, not emailed")
		return &notify.LogSender{Log: log.Logger}
	}
	from := sysutil.FirstNonEmpty(cfg.SMTP.From, cfg.SMTP.User)
	return notify.NewSMTPSender(notify.SMTPConfig{
		Host:          cfg.SMTP.Host,
		Port:          cfg.SMTP.Port,
		User:          cfg.SMTP.User,
		Pass:          cfg.SMTP.Pass,
		SSL:           cfg.SMTP.SSL,
		From:          from,
		To:            cfg.SMTP.To,
		SubjectPrefix: cfg.SMTP.SubjectPrefix,
	})
}
