// Package email delivers transactional mail for the fleet portal.
package email

import (
	"context"

	"fleetops_backend/platform/config"
	"fleetops_backend/platform/logger"
)

// Sender delivers the portal's transactional emails.
type Sender interface {
	SendWelcomeEmail(ctx context.Context, toEmail string) error
	SendVisitScheduledEmail(ctx context.Context, toEmail string, data VisitEmailData) error
	SendVisitReminderEmail(ctx context.Context, toEmail string, data VisitEmailData) error
	SendVisitCompletedEmail(ctx context.Context, toEmail string, data VisitEmailData) error
}

// VisitEmailData carries the visit details rendered into visit emails.
type VisitEmailData struct {
	ServiceType string
	ScheduledAt string
	Notes       string
}

// NewSender returns the configured sender: SMTP when email is enabled,
// otherwise a logging no-op so the rest of the system keeps working.
func NewSender(cfg config.EmailConfig, log *logger.Logger) Sender {
	if !cfg.GetEmailEnabled() {
		return &noopSender{log: log}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

type noopSender struct {
	log *logger.Logger
}

func (s *noopSender) SendWelcomeEmail(_ context.Context, toEmail string) error {
	s.log.Info("email disabled; skipping welcome email", "to", toEmail)
	return nil
}

func (s *noopSender) SendVisitScheduledEmail(_ context.Context, toEmail string, _ VisitEmailData) error {
	s.log.Info("email disabled; skipping visit scheduled email", "to", toEmail)
	return nil
}

func (s *noopSender) SendVisitReminderEmail(_ context.Context, toEmail string, _ VisitEmailData) error {
	s.log.Info("email disabled; skipping visit reminder email", "to", toEmail)
	return nil
}

func (s *noopSender) SendVisitCompletedEmail(_ context.Context, toEmail string, _ VisitEmailData) error {
	s.log.Info("email disabled; skipping visit completed email", "to", toEmail)
	return nil
}
