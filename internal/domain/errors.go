package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned when credentials are invalid
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound is returned when a user does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists is returned when the email is already registered
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrUsernameTaken is returned when the username is already in use
	ErrUsernameTaken = errors.New("username already taken")

	// ErrUserInactive is returned when a deactivated account tries to log in
	ErrUserInactive = errors.New("inactive user account")

	// ErrChatNotFound is returned when a chat does not exist or belongs to another user
	ErrChatNotFound = errors.New("chat not found")

	// ErrFailedGenerateToken is returned when token generation fails
	ErrFailedGenerateToken = errors.New("failed to generate token")

	// ErrInvalidImage is returned when an attached image fails validation
	ErrInvalidImage = errors.New("invalid image format or size")

	// ErrUploadNotFound is returned when an uploaded file record does not exist
	ErrUploadNotFound = errors.New("file not found")

	// ErrCannotDeactivateSelf is returned when an admin tries to deactivate
	// their own account
	ErrCannotDeactivateSelf = errors.New("cannot deactivate your own account")

	// ErrInternal is returned when there is an internal server error
	ErrInternal = errors.New("internal server error")
)

// ErrOTPCooldown is returned when a new code is requested before the resend
// cooldown for the existing active code has elapsed.
type ErrOTPCooldown struct {
	RemainingSeconds int
}

func (e *ErrOTPCooldown) Error() string {
	return fmt.Sprintf("Please wait %d seconds before requesting a new OTP", e.RemainingSeconds)
}

// IsOTPCooldown reports whether err is a cooldown rejection
func IsOTPCooldown(err error) (*ErrOTPCooldown, bool) {
	var cooldown *ErrOTPCooldown
	if errors.As(err, &cooldown) {
		return cooldown, true
	}
	return nil, false
}
