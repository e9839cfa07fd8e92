// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

// Package mail delivers transactional email over SMTP.
package mail

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/oops"
	gomail "github.com/wneessen/go-mail"

	"github.com/ivanlelis-27/amesco-plus-be/internal/auth"
)

// DefaultSMTPPort is the submission port used with STARTTLS.
const DefaultSMTPPort = 587

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	SenderName  string
	SenderEmail string
}

// dialer sends prepared messages.
type dialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// SMTPSender implements auth.EmailSender over an authenticated STARTTLS relay.
type SMTPSender struct {
	client dialer
	cfg    SMTPConfig
}

var _ auth.EmailSender = (*SMTPSender)(nil)

// NewSMTPSender creates a sender. Host and SenderEmail are required.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, oops.Code("MAIL_CONFIG_INVALID").With("field", "host").Errorf("smtp host is required")
	}
	if strings.TrimSpace(cfg.SenderEmail) == "" {
		return nil, oops.Code("MAIL_CONFIG_INVALID").With("field", "sender_email").Errorf("sender email is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = DefaultSMTPPort
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, oops.Code("MAIL_CONFIG_INVALID").With("host", cfg.Host).Wrap(err)
	}
	return &SMTPSender{client: client, cfg: cfg}, nil
}

// Send delivers an HTML message to a single recipient.
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg, err := s.message(to, subject, htmlBody)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("host", s.cfg.Host).Wrap(err)
	}
	return nil
}

func (s *SMTPSender) message(to, subject, htmlBody string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.cfg.SenderName, s.cfg.SenderEmail); err != nil {
		return nil, oops.Code("MAIL_INVALID_SENDER").With("sender", s.cfg.SenderEmail).Wrap(err)
	}
	if err := msg.To(to); err != nil {
		return nil, oops.Code("MAIL_INVALID_RECIPIENT").Wrap(err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)
	return msg, nil
}

// LogSender logs messages instead of sending them. It is used when no SMTP
// relay is configured.
type LogSender struct {
	logger *slog.Logger
}

var _ auth.EmailSender = (*LogSender)(nil)

// NewLogSender creates a LogSender. A nil logger uses slog.Default.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send logs the recipient and subject. The body is not logged since it may
// carry credentials.
func (s *LogSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	s.logger.InfoContext(ctx, "email not sent, no smtp relay configured",
		"to", to,
		"subject", subject,
		"body_bytes", len(htmlBody))
	return nil
}
