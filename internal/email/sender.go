package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"net/url"
	"strings"

	"user-auth-server/internal/config"
)

// Sender delivers a confirmation link to an address. Fire-and-forget from
// the caller's perspective: failures are logged, never surfaced to the
// requester, so transport errors cannot be used to probe account existence.
type Sender interface {
	Send(ctx context.Context, to, confirmURL string) error
}

// ConfirmationURL fills the configured template's {userId} and {token}
// placeholders with escaped values.
func ConfirmationURL(template, userID, token string) string {
	r := strings.NewReplacer(
		"{userId}", url.QueryEscape(userID),
		"{token}", url.QueryEscape(token),
	)
	return r.Replace(template)
}

// SMTPSender sends confirmation mail over plain SMTP.
type SMTPSender struct {
	addr        string
	host        string
	senderName  string
	senderEmail string
	password    string
}

func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		addr:        fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		host:        cfg.SMTPHost,
		senderName:  cfg.SenderName,
		senderEmail: cfg.SenderEmail,
		password:    cfg.SMTPPassword,
	}
}

func (s *SMTPSender) Send(ctx context.Context, to, confirmURL string) error {
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s <%s>", s.senderName, s.senderEmail),
		"To: " + to,
		"Subject: Confirm your email address",
		"",
		"Confirm your email address by opening the link below.",
		"",
		confirmURL,
		"",
	}, "\r\n")

	var a smtp.Auth
	if s.password != "" {
		a = smtp.PlainAuth("", s.senderEmail, s.password, s.host)
	}
	return smtp.SendMail(s.addr, a, s.senderEmail, []string{to}, []byte(msg))
}

// LogSender logs the confirmation link instead of sending it. Used when no
// SMTP host is configured (local and dev environments).
type LogSender struct {
	Log *slog.Logger
}

func (s LogSender) Send(ctx context.Context, to, confirmURL string) error {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("confirmation email (not sent)", "to", to, "url", confirmURL)
	return nil
}
