package handlers

import (
	"context"
	"net/http"

	"github.com/sonirghv/Gemini-backend/internal/domain"
	"go.uber.org/zap"
)

type OTPService interface {
	Resend(ctx context.Context, email string, purpose domain.OTPPurpose) (bool, string)
	Status(email string, purpose domain.OTPPurpose) *domain.OTPStatus
	Stats() domain.OTPStats
	Cleanup() int
	InvalidateAll(email string, purpose domain.OTPPurpose) int
}

type OTPHandler struct {
	otpService OTPService
	logger     *zap.Logger
}

func NewOTPHandler(otpService OTPService, logger *zap.Logger) *OTPHandler {
	return &OTPHandler{
		otpService: otpService,
		logger:     logger,
	}
}

// parsePurpose maps the request value onto a known purpose, defaulting to
// email verification.
func parsePurpose(raw string) domain.OTPPurpose {
	if domain.OTPPurpose(raw) == domain.PurposePasswordReset {
		return domain.PurposePasswordReset
	}
	return domain.PurposeEmailVerification
}

// ResendHandler reissues the active code for an email
func (h *OTPHandler) ResendHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email   string `json:"email" validate:"required,email"`
		Purpose string `json:"purpose"`
	}

	if err := validateRequest(w, r, &req); err != nil {
		return
	}

	ok, message := h.otpService.Resend(r.Context(), req.Email, parsePurpose(req.Purpose))

	status := http.StatusOK
	if !ok {
		status = http.StatusBadRequest
	}
	respondJSON(w, status, messageResponse{Success: ok, Message: message})
}

// StatusHandler reports the state of the active code without consuming attempts
func (h *OTPHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		http.Error(w, "email query parameter is required", http.StatusBadRequest)
		return
	}

	status := h.otpService.Status(email, parsePurpose(r.URL.Query().Get("purpose")))
	respondJSON(w, http.StatusOK, status)
}

// StatsHandler reports engine counters and configuration
func (h *OTPHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.otpService.Stats())
}

// CleanupHandler removes records past the retention window
func (h *OTPHandler) CleanupHandler(w http.ResponseWriter, r *http.Request) {
	removed := h.otpService.Cleanup()
	h.logger.Info("otp cleanup triggered", zap.Int("removed", removed))
	respondJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// InvalidateHandler deactivates codes for an email, optionally scoped to a purpose
func (h *OTPHandler) InvalidateHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email   string `json:"email" validate:"required,email"`
		Purpose string `json:"purpose"`
	}

	if err := validateRequest(w, r, &req); err != nil {
		return
	}

	purpose := domain.OTPPurpose(req.Purpose)
	if purpose != domain.PurposeEmailVerification && purpose != domain.PurposePasswordReset {
		purpose = ""
	}

	invalidated := h.otpService.InvalidateAll(req.Email, purpose)
	respondJSON(w, http.StatusOK, map[string]int{"invalidated": invalidated})
}
