// Package recaptcha implements the outbound client for the Google reCAPTCHA
// v3 siteverify endpoint.
//
// The client is the only place in the service that performs network I/O on
// the request path, so it is bounded by a short timeout: a slow or hung
// verifier must degrade a single signal, never exhaust worker capacity.
// Transport failures and malformed replies are returned as errors, not as
// low scores; policy for those errors belongs to the classifier.
package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bettercallhenk/contact-backend/internal/domain"
)

// DefaultEndpoint is Google's siteverify API.
const DefaultEndpoint = "https://www.google.com/recaptcha/api/siteverify"

// maxReplyBytes caps how much of the verifier reply is read. The real reply
// is a few hundred bytes.
const maxReplyBytes = 64 << 10

// Client verifies client-supplied reCAPTCHA tokens against the remote
// scoring authority. Safe for concurrent use.
type Client struct {
	secret   string
	endpoint string
	http     *http.Client
}

// New constructs a Client holding the server-side shared secret. timeout
// bounds each verification call end to end; values <= 0 fall back to 3s.
func New(secret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		secret:   secret,
		endpoint: DefaultEndpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// WithEndpoint overrides the siteverify URL. Used by tests to point the
// client at a local stub.
func (c *Client) WithEndpoint(endpoint string) *Client {
	c.endpoint = endpoint
	return c
}

// siteverifyReply mirrors the subset of the siteverify response the service
// consumes. ErrorCodes is kept for logging context on failed verifications.
type siteverifyReply struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	Action     string   `json:"action"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify resolves token into a human-likelihood score.
//
// An empty token short-circuits without any network call and returns an
// unknown (inconclusive) result: a blocked challenge widget is a legitimate
// degraded case, not fraud. An unconfigured secret short-circuits the same
// way; the service then runs without the external signal entirely. With a
// token and secret present, one POST is issued with
// the shared secret, the token, and the caller's address. Network failures,
// timeouts, and malformed replies are returned as errors.
//
// A well-formed reply with success=false means Google rejected the token
// itself (expired, forged, replayed); that is a concrete verdict, reported
// as a known score of 0 rather than an error.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) (domain.ScoreResult, error) {
	if token == "" || c.secret == "" {
		return domain.ScoreResult{}, nil
	}

	form := url.Values{
		"secret":   {c.secret},
		"response": {token},
		"remoteip": {remoteIP},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return domain.ScoreResult{}, fmt.Errorf("recaptcha: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.ScoreResult{}, fmt.Errorf("recaptcha: verify call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ScoreResult{}, fmt.Errorf("recaptcha: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return domain.ScoreResult{}, fmt.Errorf("recaptcha: read reply: %w", err)
	}

	var reply siteverifyReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return domain.ScoreResult{}, fmt.Errorf("recaptcha: decode reply: %w", err)
	}

	if !reply.Success {
		return domain.ScoreResult{Known: true, Score: 0}, nil
	}
	if reply.Score < 0 || reply.Score > 1 {
		return domain.ScoreResult{}, fmt.Errorf("recaptcha: score %v out of range", reply.Score)
	}
	return domain.ScoreResult{Known: true, Score: reply.Score}, nil
}
