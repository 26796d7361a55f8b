package domain

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// OTPPurpose distinguishes the use cases a code can be issued for
type OTPPurpose string

const (
	PurposeEmailVerification OTPPurpose = "email_verification"
	PurposePasswordReset     OTPPurpose = "password_reset"
)

// OTPRecord is one issued verification code for an (email, purpose) pair.
// At most one record per pair is active at any instant. Records are owned by
// the OTP service; callers only ever see copies.
type OTPRecord struct {
	ID          ulid.ULID  `json:"id"`
	Email       string     `json:"email"`
	Purpose     OTPPurpose `json:"purpose"`
	Code        string     `json:"-"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`
	IsActive    bool       `json:"is_active"`
	IsVerified  bool       `json:"is_verified"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
}

// NewOTPRecord creates an active record expiring after the given duration
func NewOTPRecord(email string, purpose OTPPurpose, code string, expiry time.Duration, maxAttempts int) *OTPRecord {
	now := time.Now()
	return &OTPRecord{
		ID:          ulid.Make(),
		Email:       email,
		Purpose:     purpose,
		Code:        code,
		MaxAttempts: maxAttempts,
		IsActive:    true,
		CreatedAt:   now,
		ExpiresAt:   now.Add(expiry),
	}
}

// IsExpired checks if the record's code is past its expiry
func (r *OTPRecord) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// Snapshot returns a copy safe to hand to callers
func (r *OTPRecord) Snapshot() *OTPRecord {
	c := *r
	return &c
}

// OTPStatus is a read-only view of the active code for an (email, purpose) pair
type OTPStatus struct {
	HasActiveOTP      bool       `json:"has_active_otp"`
	IsExpired         bool       `json:"is_expired"`
	AttemptsRemaining int        `json:"attempts_remaining"`
	CanResend         bool       `json:"can_resend"`
	ExpiresInSeconds  int        `json:"expires_in_seconds"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
}

// OTPStats reports service-level counters and configuration
type OTPStats struct {
	ActiveOTPs            int `json:"active_otps"`
	ExpiredOTPs           int `json:"expired_otps"`
	VerifiedOTPs          int `json:"verified_otps"`
	TotalOTPs             int `json:"total_otps"`
	OTPLength             int `json:"otp_length"`
	ExpiryMinutes         int `json:"expiry_minutes"`
	MaxAttempts           int `json:"max_attempts"`
	ResendCooldownMinutes int `json:"resend_cooldown_minutes"`
}
