// Contact HTTP handler.
//
// This file exposes the single business endpoint of the service:
//   - POST /api/contact  (submit a contact-form inquiry)
//
// The handler is transport-thin but carries one piece of policy that cannot
// live anywhere else: response shaping. Genuine acceptances and masked bot
// rejections must be indistinguishable on the wire (same status, same
// envelope, same latency profile), so the external verification result is
// always resolved before classification and the notification side effect is
// dispatched off the request path.
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/bettercallhenk/contact-backend/internal/domain"
	"github.com/bettercallhenk/contact-backend/internal/http/middleware"
	"github.com/bettercallhenk/contact-backend/internal/notify"
	"github.com/bettercallhenk/contact-backend/internal/services"
	"github.com/bettercallhenk/contact-backend/internal/utils"
)

// submissionVerdicts counts pipeline outcomes by verdict and reason. This is
// the only place masked rejections become visible; the wire response never
// distinguishes them.
var submissionVerdicts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "contact_submissions_total",
		Help: "Contact form submissions by classification outcome.",
	},
	[]string{"outcome", "reason"},
)

func init() {
	prometheus.MustRegister(submissionVerdicts)
}

//
// Service contracts
//

// SubmissionLimiter gates submissions per client address. Implementations
// must be safe for concurrent use.
type SubmissionLimiter interface {
	// Allow records one attempt for key and reports whether it is within
	// the configured window.
	Allow(key string) bool
}

// ScoreVerifier resolves an optional challenge token into a human-likelihood
// score. Implementations must honor ctx for cancellation and timeouts.
type ScoreVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (domain.ScoreResult, error)
}

// SubmissionClassifier folds the anti-automation signals into a verdict.
type SubmissionClassifier interface {
	Classify(sub *domain.Submission, score domain.ScoreResult, verifyErr error) domain.Verdict
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints and their injected collaborators.
type Handlers struct {
	limiter    SubmissionLimiter
	verifier   ScoreVerifier
	classifier SubmissionClassifier
	sender     notify.Sender

	// retryAfter is advertised on 429 responses.
	retryAfter time.Duration

	// notifyTimeout bounds the asynchronous notification dispatch.
	notifyTimeout time.Duration
}

// New constructs a Handlers instance bound to the given collaborators.
func New(limiter SubmissionLimiter, verifier ScoreVerifier, classifier SubmissionClassifier, sender notify.Sender, retryAfter time.Duration) *Handlers {
	return &Handlers{
		limiter:       limiter,
		verifier:      verifier,
		classifier:    classifier,
		sender:        sender,
		retryAfter:    retryAfter,
		notifyTimeout: 30 * time.Second,
	}
}

// ContactRequest is the JSON payload of a contact-form submission. All
// fields arrive as strings; nothing here is trusted.
type ContactRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	WeddingDate string `json:"wedding_date"`
	Message     string `json:"message"`

	// Website is the honeypot field: hidden from sighted users, so bots
	// fill it and humans never do.
	Website string `json:"website"`

	// FormLoadedAt is the epoch-millisecond render timestamp, sent as a
	// string by the form script.
	FormLoadedAt string `json:"form_loaded_at"`

	RecaptchaToken string `json:"recaptcha_token"`
	Source         string `json:"source"`
}

// Contact handles POST /api/contact.
//
// Order of operations mirrors the pipeline: rate-limit gate, field
// validation, external score resolution, classification, side-effect
// dispatch, response shaping. The verifier is called before classification
// for every structurally valid submission so the latency of the response
// does not reveal which signal (if any) condemned it.
func (h *Handlers) Contact(c *gin.Context) {
	lg := middleware.LoggerFrom(c)
	msgs := messagesFor(c)
	clientIP := c.ClientIP()

	if !h.limiter.Allow(clientIP) {
		submissionVerdicts.WithLabelValues(string(domain.OutcomeRateLimited), "").Inc()
		lg.Warn().Str("client_ip", clientIP).Msg("submission rate limited")
		c.Header("Retry-After", strconv.Itoa(int(h.retryAfter.Seconds())))
		fail(c, http.StatusTooManyRequests, msgs.RateLimited)
		return
	}

	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, msgs.InvalidBody)
		return
	}

	sub := &domain.Submission{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Message:     req.Message,
		WeddingDate: req.WeddingDate,
		Source:      req.Source,
		Honeypot:    req.Website,
		// An unparseable timestamp becomes zero, which the classifier
		// treats as too fast.
		FormLoadedAt:   utils.ParseInt64Default(req.FormLoadedAt, 0),
		RecaptchaToken: req.RecaptchaToken,
		ClientIP:       clientIP,
	}

	if ferr := services.ValidateSubmission(sub); ferr != nil {
		lg.Debug().Str("field", ferr.Field).Msg("submission failed validation")
		fail(c, http.StatusBadRequest, msgs.fieldMessage(ferr.Field))
		return
	}

	// Resolve the external score before classifying, unconditionally, so a
	// locally condemned submission takes the same time as a genuine one.
	score, verifyErr := h.verifier.Verify(c.Request.Context(), sub.RecaptchaToken, clientIP)
	if verifyErr != nil {
		// Absorbed: the classifier decides policy for an unavailable
		// verifier. Never a 5xx.
		lg.Warn().Err(verifyErr).Msg("score verification failed")
	}

	verdict := h.classifier.Classify(sub, score, verifyErr)
	submissionVerdicts.WithLabelValues(string(verdict.Outcome), string(verdict.Reason)).Inc()

	switch {
	case verdict.Outcome == domain.OutcomeGenuine:
		lg.Info().
			Str("client_ip", clientIP).
			Str("source", sub.Source).
			Func(verdictScore(verdict)).
			Msg("genuine lead accepted")
		h.dispatchNotification(lg, sub)
		ok(c, http.StatusOK, msgs.ThankYou)

	case verdict.Masked():
		lg.Warn().
			Str("client_ip", clientIP).
			Str("reason", string(verdict.Reason)).
			Func(verdictScore(verdict)).
			Msg("bot submission masked")
		// Same envelope as acceptance, down to the byte.
		ok(c, http.StatusOK, msgs.ThankYou)

	default: // invalid phone: surfaced so a real user can correct a typo
		lg.Info().Str("client_ip", clientIP).Msg("submission rejected: implausible phone")
		fail(c, http.StatusBadRequest, msgs.InvalidPhone)
	}
}

// dispatchNotification delivers the lead off the request path. Delivery
// failures are logged and swallowed: the HTTP response is already decided,
// and surfacing them would both break the promise made to the caller and
// open a behavior oracle.
func (h *Handlers) dispatchNotification(lg *zerolog.Logger, sub *domain.Submission) {
	lead := notify.Lead{
		Name:        sub.Name,
		Email:       sub.Email,
		Phone:       sub.Phone,
		WeddingDate: sub.WeddingDate,
		Message:     sub.Message,
		Source:      sub.Source,
		ClientIP:    sub.ClientIP,
		ReceivedAt:  time.Now().UTC(),
	}
	logger := *lg // capture a copy; the gin context dies with the request
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.notifyTimeout)
		defer cancel()
		if err := h.sender.Send(ctx, lead); err != nil {
			logger.Error().Err(err).Msg("lead notification failed")
			return
		}
		logger.Info().Msg("lead notification delivered")
	}()
}

// verdictScore attaches the raw verifier score to a log event when one
// exists.
func verdictScore(v domain.Verdict) func(e *zerolog.Event) {
	return func(e *zerolog.Event) {
		if v.Score != nil {
			e.Float64("recaptcha_score", *v.Score)
		}
	}
}
