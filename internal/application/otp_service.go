package application

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/sonirghv/Gemini-backend/internal/domain"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// defaultRetention is how long records are kept past their expiry before
// Cleanup may hard-delete them
const defaultRetention = 24 * time.Hour

type otpKey struct {
	email   string
	purpose domain.OTPPurpose
}

// OTPService issues and verifies one-time codes, one state machine per
// (email, purpose) pair. Records live in memory and are owned exclusively by
// the service; every record handed out is a copy. A single mutex guards all
// record access, and it is never held across the email dispatch call.
type OTPService struct {
	mu      sync.Mutex
	records map[otpKey][]*domain.OTPRecord

	cfg       config.OTPConfig
	retention time.Duration
	sender    domain.EmailSender
	logger    *zap.Logger
}

// NewOTPService creates an OTP service backed by the given email sender
func NewOTPService(cfg config.OTPConfig, sender domain.EmailSender, logger *zap.Logger) *OTPService {
	return &OTPService{
		records:   make(map[otpKey][]*domain.OTPRecord),
		cfg:       cfg,
		retention: defaultRetention,
		sender:    sender,
		logger:    logger,
	}
}

// Create issues a new code for the pair and dispatches it by email. When an
// unexpired active code exists and its age is below the resend cooldown, the
// call fails with *domain.ErrOTPCooldown and nothing changes. Otherwise any
// existing active record is deactivated first. The code is returned even if
// the email dispatch failed; a failed send never rolls back the record.
func (s *OTPService) Create(ctx context.Context, email string, purpose domain.OTPPurpose) (string, bool, error) {
	s.mu.Lock()
	now := time.Now()

	if active := s.activeLocked(email, purpose); active != nil && now.Before(active.ExpiresAt) {
		elapsed := now.Sub(active.CreatedAt)
		if elapsed < s.cfg.ResendCooldown {
			remaining := int((s.cfg.ResendCooldown - elapsed).Seconds())
			s.mu.Unlock()
			s.logger.Warn("OTP resend attempted too soon",
				zap.String("email", email),
				zap.String("purpose", string(purpose)),
				zap.Int("remaining_seconds", remaining))
			return "", false, &domain.ErrOTPCooldown{RemainingSeconds: remaining}
		}
	}
	s.deactivateLocked(email, purpose)

	code, err := generateCode(s.cfg.Length)
	if err != nil {
		s.mu.Unlock()
		s.logger.Error("failed to generate OTP code", zap.Error(err))
		return "", false, domain.ErrInternal
	}

	record := domain.NewOTPRecord(email, purpose, code, s.cfg.Expiry, s.cfg.MaxAttempts)
	key := otpKey{email: email, purpose: purpose}
	s.records[key] = append(s.records[key], record)
	s.mu.Unlock()

	// Dispatch happens outside the lock; it is the only slow step here.
	sent, message := s.sender.SendOTPEmail(ctx, email, code, purpose)
	if sent {
		s.logger.Info("OTP created and sent",
			zap.String("email", email), zap.String("purpose", string(purpose)))
	} else {
		s.logger.Error("OTP created but email dispatch failed",
			zap.String("email", email), zap.String("message", message))
	}
	return code, sent, nil
}

// Verify checks a submitted code against the pair's active record. The
// attempt counter is incremented before the comparison, so a correct code on
// the final allowed attempt still consumes it.
func (s *OTPService) Verify(ctx context.Context, email string, purpose domain.OTPPurpose, submitted string) (bool, string, *domain.OTPRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.activeLocked(email, purpose)
	if record == nil {
		return false, "No active OTP found for this email", nil
	}

	now := time.Now()
	if now.After(record.ExpiresAt) {
		record.IsActive = false
		return false, "OTP has expired. Please request a new one", record.Snapshot()
	}

	if record.Attempts >= record.MaxAttempts {
		record.IsActive = false
		return false, "Maximum verification attempts exceeded. Please request a new OTP", record.Snapshot()
	}

	record.Attempts++

	if record.Code != submitted {
		remaining := record.MaxAttempts - record.Attempts
		if remaining > 0 {
			return false, fmt.Sprintf("Invalid OTP code. %d attempts remaining", remaining), record.Snapshot()
		}
		record.IsActive = false
		return false, "Invalid OTP code. Maximum attempts exceeded", record.Snapshot()
	}

	record.IsVerified = true
	record.VerifiedAt = &now
	record.IsActive = false

	s.logger.Info("OTP verified",
		zap.String("email", email), zap.String("purpose", string(purpose)))
	return true, "OTP verified successfully", record.Snapshot()
}

// Resend rotates the pair's active code after the cooldown has elapsed
func (s *OTPService) Resend(ctx context.Context, email string, purpose domain.OTPPurpose) (bool, string) {
	s.mu.Lock()
	record := s.activeLocked(email, purpose)
	if record == nil {
		s.mu.Unlock()
		return false, "No active OTP found to resend"
	}

	elapsed := time.Since(record.CreatedAt)
	if elapsed < s.cfg.ResendCooldown {
		remaining := int((s.cfg.ResendCooldown - elapsed).Seconds())
		s.mu.Unlock()
		return false, fmt.Sprintf("Please wait %d seconds before requesting a new OTP", remaining)
	}
	s.mu.Unlock()

	_, sent, err := s.Create(ctx, email, purpose)
	if err != nil {
		return false, err.Error()
	}
	if !sent {
		return false, "Failed to send OTP email"
	}
	return true, "OTP resent successfully"
}

// Status reports the pair's current state without mutating anything
func (s *OTPService) Status(email string, purpose domain.OTPPurpose) *domain.OTPStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.activeLocked(email, purpose)
	if record == nil {
		return &domain.OTPStatus{CanResend: true}
	}

	now := time.Now()
	status := &domain.OTPStatus{
		HasActiveOTP:      true,
		IsExpired:         now.After(record.ExpiresAt),
		AttemptsRemaining: max(0, record.MaxAttempts-record.Attempts),
		CanResend:         now.Sub(record.CreatedAt) >= s.cfg.ResendCooldown,
	}
	if remaining := record.ExpiresAt.Sub(now); remaining > 0 {
		status.ExpiresInSeconds = int(remaining.Seconds())
	}
	createdAt, expiresAt := record.CreatedAt, record.ExpiresAt
	status.CreatedAt = &createdAt
	status.ExpiresAt = &expiresAt
	return status
}

// Cleanup hard-deletes records whose expiry is older than the retention
// threshold, regardless of their active flag. This is the only destructive
// path; it is idempotent and safe alongside all other operations.
func (s *OTPService) Cleanup() int {
	if !s.cfg.CleanupEnabled {
		return 0
	}

	cutoff := time.Now().Add(-s.retention)

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for key, records := range s.records {
		kept := records[:0]
		for _, record := range records {
			if record.ExpiresAt.Before(cutoff) {
				deleted++
				continue
			}
			kept = append(kept, record)
		}
		if len(kept) == 0 {
			delete(s.records, key)
			continue
		}
		s.records[key] = kept
	}

	if deleted > 0 {
		s.logger.Info("cleaned up expired OTP records", zap.Int("count", deleted))
	}
	return deleted
}

// InvalidateAll deactivates every active code for an email, optionally
// scoped to a single purpose (empty purpose means all purposes)
func (s *OTPService) InvalidateAll(email string, purpose domain.OTPPurpose) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	invalidated := 0
	for key, records := range s.records {
		if key.email != email {
			continue
		}
		if purpose != "" && key.purpose != purpose {
			continue
		}
		for _, record := range records {
			if record.IsActive {
				record.IsActive = false
				invalidated++
			}
		}
	}

	if invalidated > 0 {
		s.logger.Info("invalidated OTP records",
			zap.String("email", email), zap.Int("count", invalidated))
	}
	return invalidated
}

// Stats reports record counts and the engine configuration
func (s *OTPService) Stats() domain.OTPStats {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	stats := domain.OTPStats{
		OTPLength:             s.cfg.Length,
		ExpiryMinutes:         int(s.cfg.Expiry.Minutes()),
		MaxAttempts:           s.cfg.MaxAttempts,
		ResendCooldownMinutes: int(s.cfg.ResendCooldown.Minutes()),
	}
	for _, records := range s.records {
		for _, record := range records {
			stats.TotalOTPs++
			if record.IsVerified {
				stats.VerifiedOTPs++
			}
			if now.After(record.ExpiresAt) {
				stats.ExpiredOTPs++
			} else if record.IsActive {
				stats.ActiveOTPs++
			}
		}
	}
	return stats
}

// activeLocked returns the pair's active record, expired or not
func (s *OTPService) activeLocked(email string, purpose domain.OTPPurpose) *domain.OTPRecord {
	for _, record := range s.records[otpKey{email: email, purpose: purpose}] {
		if record.IsActive {
			return record
		}
	}
	return nil
}

func (s *OTPService) deactivateLocked(email string, purpose domain.OTPPurpose) {
	for _, record := range s.records[otpKey{email: email, purpose: purpose}] {
		record.IsActive = false
	}
}

// generateCode draws length decimal digits from crypto/rand
func generateCode(length int) (string, error) {
	const digits = "0123456789"
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		code[i] = digits[n.Int64()]
	}
	return string(code), nil
}
