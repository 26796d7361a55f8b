package email

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/sonirghv/Gemini-backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// EmailService sends plain-text mail over SMTP. Failures are reported as a
// (sent, message) pair rather than an error so callers can treat delivery as
// a soft concern.
type EmailService struct {
	config *config.SMTPConfig
	logger *zap.Logger
}

func NewEmailService(cfg *config.SMTPConfig, logger *zap.Logger) *EmailService {
	if cfg.Enabled && (cfg.Host == "" || cfg.Username == "" || cfg.Password == "") {
		logger.Warn("email service not properly configured, sends will be skipped")
		cfg.Enabled = false
	}
	return &EmailService{
		config: cfg,
		logger: logger,
	}
}

// Send delivers a message to a single recipient. When the service is
// disabled it reports success without sending, so flows that gate on
// delivery keep working in development setups.
func (s *EmailService) Send(ctx context.Context, to, subject, body string) (bool, string) {
	if !s.config.Enabled {
		s.logger.Info("email service disabled, skipping send",
			zap.String("to", to), zap.String("subject", subject))
		return true, "Email service disabled"
	}

	message := fmt.Sprintf("From: %s <%s>\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n"+
		"%s", s.config.FromName, s.config.From, to, subject, body)

	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	err := smtp.SendMail(
		fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		auth,
		s.config.From,
		[]string{to},
		[]byte(message),
	)
	if err != nil {
		s.logger.Error("failed to send email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return false, fmt.Sprintf("Failed to send email: %v", err)
	}

	s.logger.Info("email sent",
		zap.String("to", to),
		zap.String("subject", subject))
	return true, "Email sent successfully"
}
