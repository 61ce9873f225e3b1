// Package notify delivers accepted contact inquiries to a human operator.
//
// The rest of the pipeline only sees the Sender interface; delivery failures
// stay inside this package's callers as log entries and never change the
// HTTP response already promised to the submitter.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/jordan-wright/email"
	"github.com/rs/zerolog"
)

// Lead is the payload of one accepted inquiry.
type Lead struct {
	Name        string
	Email       string
	Phone       string
	WeddingDate string
	Message     string
	Source      string
	ClientIP    string
	ReceivedAt  time.Time
}

// Sender delivers a lead to the operator. Implementations must be safe for
// concurrent use; each Genuine verdict triggers at most one Send.
type Sender interface {
	Send(ctx context.Context, lead Lead) error
}

// SMTPConfig carries the connection settings for SMTPSender.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	SSL  bool

	From          string
	To            string
	SubjectPrefix string
}

// SMTPSender delivers leads as plain-text emails over SMTP.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender constructs an SMTPSender from cfg.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = "[Kontakt]"
	}
	return &SMTPSender{cfg: cfg}
}

// Send composes and delivers the lead email. The ctx parameter satisfies the
// Sender contract; the SMTP dial itself is bounded by the server's own
// timeouts.
func (s *SMTPSender) Send(ctx context.Context, lead Lead) error {
	_ = ctx

	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", lead.Name)
	fmt.Fprintf(&b, "E-Mail: %s\n", lead.Email)
	fmt.Fprintf(&b, "Telefon: %s\n", lead.Phone)
	if lead.WeddingDate != "" {
		fmt.Fprintf(&b, "Hochzeitsdatum: %s\n", lead.WeddingDate)
	}
	if lead.Source != "" {
		fmt.Fprintf(&b, "Quelle: %s\n", lead.Source)
	}
	fmt.Fprintf(&b, "IP: %s\n", lead.ClientIP)
	fmt.Fprintf(&b, "Eingegangen: %s\n\n", lead.ReceivedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "%s\n", lead.Message)

	e := email.NewEmail()
	e.From = s.cfg.From
	e.To = []string{s.cfg.To}
	e.ReplyTo = []string{fmt.Sprintf("%s <%s>", lead.Name, lead.Email)}
	e.Subject = strings.TrimSpace(s.cfg.SubjectPrefix + " Neue Anfrage von " + lead.Name)
	e.Text = []byte(b.String())

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)

	if s.cfg.SSL {
		return e.SendWithTLS(addr, auth, &tls.Config{ServerName: s.cfg.Host})
	}
	return e.Send(addr, auth)
}

// LogSender writes leads to the log instead of delivering them. Used when no
// SMTP destination is configured, typically in development.
type LogSender struct {
	Log zerolog.Logger
}

// Send records the lead at info level and always succeeds.
func (s *LogSender) Send(ctx context.Context, lead Lead) error {
	_ = ctx
	s.Log.Info().
		Str("name", lead.Name).
		Str("email", lead.Email).
		Str("phone", lead.Phone).
		Str("wedding_date", lead.WeddingDate).
		Str("source", lead.Source).
		Msg("lead (smtp disabled)")
	return nil
}
