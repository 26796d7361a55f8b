package domain

import "context"

// EmailSender is the outbound email port. Dispatch failures are soft: both
// methods report success as a boolean with a human-readable message instead
// of an error, and the caller decides what to do with a failed send.
type EmailSender interface {
	// SendOTPEmail delivers a verification code for the given purpose
	SendOTPEmail(ctx context.Context, email, code string, purpose OTPPurpose) (bool, string)

	// SendWelcomeEmail greets a newly registered user
	SendWelcomeEmail(ctx context.Context, email, username string) (bool, string)
}
