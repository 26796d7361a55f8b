package email

import (
	"context"
	"fmt"

	"github.com/sonirghv/Gemini-backend/internal/domain"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// emailCommand is the transport behind the templates
type emailCommand interface {
	Send(ctx context.Context, to, subject, body string) (bool, string)
}

// EmailTemplate renders and dispatches the application's emails. It
// implements domain.EmailSender.
type EmailTemplate struct {
	appName string
	sender  emailCommand
	logger  *zap.Logger
}

func NewEmailTemplate(appName string, cfg *config.SMTPConfig, logger *zap.Logger) *EmailTemplate {
	return &EmailTemplate{
		appName: appName,
		sender:  NewEmailService(cfg, logger),
		logger:  logger,
	}
}

// SendOTPEmail delivers a verification code for the given purpose
func (t *EmailTemplate) SendOTPEmail(ctx context.Context, email, code string, purpose domain.OTPPurpose) (bool, string) {
	subject := fmt.Sprintf("Your %s Verification Code", t.appName)
	body := fmt.Sprintf(`Hello!

You requested a verification code for your %s account.

Your verification code is: %s

Please use it to complete your %s.

This code will expire in 10 minutes.
Do not share this code with anyone.

If you didn't request this code, please ignore this email.

Best regards,
The %s Team
`, t.appName, code, purposeLabel(purpose), t.appName)

	return t.sender.Send(ctx, email, subject, body)
}

// SendWelcomeEmail greets a newly registered user
func (t *EmailTemplate) SendWelcomeEmail(ctx context.Context, email, username string) (bool, string) {
	subject := fmt.Sprintf("Welcome to %s!", t.appName)
	body := fmt.Sprintf(`Hello %s!

Welcome to %s! We're excited to have you on board.

You can now start chatting with our AI assistant and explore all the features we have to offer.

If you have any questions or need help getting started, don't hesitate to reach out to our support team.

Happy chatting!

Best regards,
The %s Team
`, username, t.appName, t.appName)

	return t.sender.Send(ctx, email, subject, body)
}

func purposeLabel(purpose domain.OTPPurpose) string {
	switch purpose {
	case domain.PurposeEmailVerification:
		return "email verification"
	case domain.PurposePasswordReset:
		return "password reset"
	default:
		return string(purpose)
	}
}
