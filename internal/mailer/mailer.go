package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/safariconnector/backend/pkg/config"
	"github.com/safariconnector/backend/pkg/logger"
)

// Sender delivers transactional email.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender delivers mail over plain SMTP with AUTH.
type SMTPSender struct {
	cfg  config.MailConfig
	logg *logger.Logger
}

// NewSender returns an SMTP-backed sender, or a no-op sender when mail is disabled.
func NewSender(cfg config.MailConfig, logg *logger.Logger) (Sender, error) {
	if !cfg.Enabled {
		return &noopSender{logg: logg}, nil
	}
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		return nil, fmt.Errorf("smtp host required when mail is enabled")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("mail from address required when mail is enabled")
	}
	return &SMTPSender{cfg: cfg, logg: logg}, nil
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("recipient required")
	}

	msg := strings.Join([]string{
		"From: " + s.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{"to": to, "subject": subject}), "email sent")
	}
	return nil
}

type noopSender struct {
	logg *logger.Logger
}

func (n *noopSender) Send(ctx context.Context, to, subject, _ string) error {
	if n.logg != nil {
		n.logg.Info(n.logg.WithFields(ctx, map[string]any{"to": to, "subject": subject}), "mail disabled, skipping send")
	}
	return nil
}
