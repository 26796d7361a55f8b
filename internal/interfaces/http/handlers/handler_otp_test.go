package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sonirghv/Gemini-backend/internal/application"
	"github.com/sonirghv/Gemini-backend/internal/domain"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type staticEmailSender struct{}

func (staticEmailSender) SendOTPEmail(ctx context.Context, email, code string, purpose domain.OTPPurpose) (bool, string) {
	return true, "OTP sent successfully"
}

func (staticEmailSender) SendWelcomeEmail(ctx context.Context, email, username string) (bool, string) {
	return true, "Welcome email sent"
}

func newOTPHandler() (*OTPHandler, *application.OTPService) {
	service := application.NewOTPService(config.OTPConfig{
		Length:         6,
		Expiry:         10 * time.Minute,
		MaxAttempts:    3,
		ResendCooldown: 0,
		CleanupEnabled: true,
	}, staticEmailSender{}, zap.NewNop())
	return NewOTPHandler(service, zap.NewNop()), service
}

func TestOTPHandler_Resend(t *testing.T) {
	t.Run("active code is rotated", func(t *testing.T) {
		handler, service := newOTPHandler()
		_, _, err := service.Create(context.Background(), "u@x.com", domain.PurposeEmailVerification)
		assert.NoError(t, err)

		rec := postJSON(t, handler.ResendHandler, "/api/auth/resend-otp", map[string]string{
			"email": "u@x.com",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "OTP resent successfully")
	})

	t.Run("nothing to resend", func(t *testing.T) {
		handler, _ := newOTPHandler()

		rec := postJSON(t, handler.ResendHandler, "/api/auth/resend-otp", map[string]string{
			"email": "u@x.com",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "No active OTP found to resend")
	})
}

func TestOTPHandler_Status(t *testing.T) {
	t.Run("active code reported", func(t *testing.T) {
		handler, service := newOTPHandler()
		_, _, err := service.Create(context.Background(), "u@x.com", domain.PurposeEmailVerification)
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/otp-status?email=u@x.com", nil)
		rec := httptest.NewRecorder()
		handler.StatusHandler(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var status domain.OTPStatus
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.True(t, status.HasActiveOTP)
		assert.Equal(t, 3, status.AttemptsRemaining)
	})

	t.Run("missing email parameter", func(t *testing.T) {
		handler, _ := newOTPHandler()

		req := httptest.NewRequest(http.MethodGet, "/api/auth/otp-status", nil)
		rec := httptest.NewRecorder()
		handler.StatusHandler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestOTPHandler_AdminOperations(t *testing.T) {
	t.Run("stats", func(t *testing.T) {
		handler, service := newOTPHandler()
		_, _, err := service.Create(context.Background(), "u@x.com", domain.PurposeEmailVerification)
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/admin/otp/stats", nil)
		rec := httptest.NewRecorder()
		handler.StatsHandler(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var stats domain.OTPStats
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
		assert.Equal(t, 1, stats.ActiveOTPs)
		assert.Equal(t, 6, stats.OTPLength)
	})

	t.Run("invalidate", func(t *testing.T) {
		handler, service := newOTPHandler()
		_, _, err := service.Create(context.Background(), "u@x.com", domain.PurposeEmailVerification)
		assert.NoError(t, err)

		rec := postJSON(t, handler.InvalidateHandler, "/api/admin/otp/invalidate", map[string]string{
			"email": "u@x.com",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"invalidated":1`)
		assert.False(t, service.Status("u@x.com", domain.PurposeEmailVerification).HasActiveOTP)
	})

	t.Run("cleanup with nothing expired", func(t *testing.T) {
		handler, _ := newOTPHandler()

		req := httptest.NewRequest(http.MethodPost, "/api/admin/otp/cleanup", nil)
		rec := httptest.NewRecorder()
		handler.CleanupHandler(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"removed":0`)
	})
}
