// Package services holds the business logic of the contact backend. This
// file implements the submission classifier, which folds the anti-automation
// signals (honeypot, fill time, phone plausibility, and the external
// verification score) into a single verdict.
package services

import (
	"time"

	"github.com/bettercallhenk/contact-backend/internal/domain"
	"github.com/bettercallhenk/contact-backend/internal/phone"
)

// DefaultMinFillTime is the minimum plausible time between the form becoming
// interactive and submission. Real visitors read the form first.
const DefaultMinFillTime = 5 * time.Second

// DefaultScoreThreshold is the verification score below which a submission
// is classified as automated.
const DefaultScoreThreshold = 0.5

// Classifier decides whether a submission came from a human.
//
// Signals are evaluated cheapest-first and the first condemning one wins:
// honeypot, then elapsed fill time, then phone validity, then the external
// score. The classifier is pure: it performs no I/O and holds no per-request
// state, which is what makes the pipeline testable without a network.
type Classifier struct {
	// MinFillTime is the minimum elapsed time since the form was rendered.
	// Zero falls back to DefaultMinFillTime.
	MinFillTime time.Duration

	// ScoreThreshold is the pass mark for the external verification score.
	// Zero falls back to DefaultScoreThreshold.
	ScoreThreshold float64

	// RequireVerification tightens the fail-open policy: when set, an absent
	// token or a failed verifier call rejects the submission instead of
	// passing it through. Off by default so a verifier outage can never
	// block real inquiries.
	RequireVerification bool

	// Now is a test seam; defaults to time.Now.
	Now func() time.Time
}

// Classify evaluates sub against all signals and returns the verdict.
//
// score and verifyErr carry the already-resolved result of the external
// verification call (the endpoint resolves it before classifying, so the
// latency profile of the request does not depend on the verdict). Exactly
// one of the following holds per call:
//   - verifyErr != nil: the verifier failed; inconclusive.
//   - score.Known == false: no token was supplied; inconclusive.
//   - score.Known == true: a concrete score is available.
//
// Inconclusive results fail open unless RequireVerification is set: the
// three local signals already provide coverage, and an external outage must
// not take the contact form down with it.
func (c *Classifier) Classify(sub *domain.Submission, score domain.ScoreResult, verifyErr error) domain.Verdict {
	if sub.Honeypot != "" {
		return domain.Verdict{Outcome: domain.OutcomeBot, Reason: domain.ReasonHoneypot}
	}

	// A missing or garbled render timestamp is treated exactly like a
	// too-fast submission, never as "infinitely human". Likewise a negative
	// elapsed time from clock skew or a tampered timestamp.
	if sub.FormLoadedAt <= 0 {
		return domain.Verdict{Outcome: domain.OutcomeBot, Reason: domain.ReasonTooFast}
	}
	if c.elapsed(sub.FormLoadedAt) < c.minFillTime() {
		return domain.Verdict{Outcome: domain.OutcomeBot, Reason: domain.ReasonTooFast}
	}

	if !phone.Validate(sub.Phone) {
		return domain.Verdict{Outcome: domain.OutcomeBot, Reason: domain.ReasonInvalidPhone}
	}

	if verifyErr != nil || !score.Known {
		if c.RequireVerification {
			return domain.Verdict{Outcome: domain.OutcomeBot, Reason: domain.ReasonLowScore}
		}
		return domain.Verdict{Outcome: domain.OutcomeGenuine}
	}

	s := score.Score
	if s < c.scoreThreshold() {
		return domain.Verdict{Outcome: domain.OutcomeBot, Reason: domain.ReasonLowScore, Score: &s}
	}
	return domain.Verdict{Outcome: domain.OutcomeGenuine, Score: &s}
}

// elapsed returns the wall time since the form was rendered. Negative values
// (client clock ahead of ours, or a tampered timestamp) propagate as-is and
// fall below any sane minimum.
func (c *Classifier) elapsed(formLoadedAtMillis int64) time.Duration {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return now().Sub(time.UnixMilli(formLoadedAtMillis))
}

func (c *Classifier) minFillTime() time.Duration {
	if c.MinFillTime > 0 {
		return c.MinFillTime
	}
	return DefaultMinFillTime
}

func (c *Classifier) scoreThreshold() float64 {
	if c.ScoreThreshold > 0 {
		return c.ScoreThreshold
	}
	return DefaultScoreThreshold
}
