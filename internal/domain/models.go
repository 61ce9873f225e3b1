// Package domain defines the core types shared between the HTTP layer and
// the classification pipeline: the per-request submission, the classifier
// verdict, and the external verification score.
//
// None of these types is persisted. A Submission lives for exactly one
// request and carries no identity beyond it.
package domain

// Submission is a single contact-form submission as seen by the
// classification pipeline. All payload fields come straight from the client
// and must be treated as untrusted; ClientIP is attached by the endpoint
// from the connection, never from the body.
type Submission struct {
	Name    string
	Email   string
	Phone   string
	Message string

	// WeddingDate and Source are opaque passthrough fields. They are copied
	// into the notification but never inspected by the pipeline.
	WeddingDate string
	Source      string

	// Honeypot is the hidden "website" form field. Humans never see it, so a
	// non-empty value is a near-certain automation signal.
	Honeypot string

	// FormLoadedAt is the epoch-millisecond timestamp captured when the form
	// became interactive. Zero means the client did not send a parseable
	// value, which the classifier treats the same as an implausibly fast
	// submission.
	FormLoadedAt int64

	// RecaptchaToken is the optional client-side challenge token. Empty when
	// the widget was blocked or never ran.
	RecaptchaToken string

	// ClientIP is used only as the rate-limit key and as metadata in the
	// notification. It is not an identity.
	ClientIP string
}

// Outcome is the top-level classification result.
type Outcome string

const (
	// OutcomeGenuine marks a submission accepted as a real inquiry. Only this
	// outcome triggers the notification side effect.
	OutcomeGenuine Outcome = "genuine"

	// OutcomeBot marks a submission rejected by one of the bot signals. Most
	// bot rejections are masked as success on the wire (see Verdict.Masked).
	OutcomeBot Outcome = "bot"

	// OutcomeRateLimited marks a submission refused before classification
	// because the client exceeded its submission window.
	OutcomeRateLimited Outcome = "rate_limited"
)

// Reason identifies which signal condemned a bot-classified submission.
// Reasons are recorded in logs and metrics only; they are never echoed to
// the caller.
type Reason string

const (
	ReasonHoneypot     Reason = "honeypot"
	ReasonTooFast      Reason = "too_fast"
	ReasonLowScore     Reason = "low_score"
	ReasonInvalidPhone Reason = "invalid_phone"
)

// Verdict is the output of the classification pipeline for one submission.
type Verdict struct {
	Outcome Outcome
	Reason  Reason // set only when Outcome == OutcomeBot

	// Score is the raw human-likelihood score when the external verifier
	// produced one, kept for server-side logging. Nil when the verifier was
	// skipped or failed.
	Score *float64
}

// Masked reports whether this verdict must be presented to the caller as a
// success. Honeypot, too-fast, and low-score rejections are deliberately
// indistinguishable from acceptance so automated senders cannot probe the
// detection logic. Invalid-phone rejections are not masked: a real user who
// mistyped their number deserves the chance to correct it.
func (v Verdict) Masked() bool {
	if v.Outcome != OutcomeBot {
		return false
	}
	switch v.Reason {
	case ReasonHoneypot, ReasonTooFast, ReasonLowScore:
		return true
	}
	return false
}

// ScoreResult carries the outcome of one external verification call.
type ScoreResult struct {
	// Known is false when no verification was attempted (no token supplied).
	// An unknown result is inconclusive, not a failure.
	Known bool

	// Score is the human-likelihood estimate in [0,1]. Meaningful only when
	// Known is true.
	Score float64
}
