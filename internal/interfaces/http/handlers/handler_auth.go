package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sonirghv/Gemini-backend/internal/domain"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/jwt"
	"github.com/sonirghv/Gemini-backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, email, username, password, fullName string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, *jwt.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error)
	VerifyEmail(ctx context.Context, email, code string) (bool, string, error)
	RequestPasswordReset(ctx context.Context, email string) (bool, error)
	ResetPassword(ctx context.Context, email, code, newPassword string) (bool, string, error)
}

type AuthHandler struct {
	authService AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterHandler creates a new account and sends a verification code
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Success 201 {object} dto.UserResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Username string `json:"username" validate:"required,min=3,max=50"`
		Password string `json:"password" validate:"required,min=8"`
		FullName string `json:"full_name"`
	}

	if err := validateRequest(w, r, &req); err != nil {
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Username, req.Password, req.FullName)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserAlreadyExists):
			http.Error(w, "Email already registered", http.StatusConflict)
		case errors.Is(err, domain.ErrUsernameTaken):
			http.Error(w, "Username already taken", http.StatusConflict)
		default:
			h.logger.Error("failed to register user", zap.Error(err))
			http.Error(w, "Failed to register user", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewUserResponse(user))
}

// LoginHandler authenticates a user and returns a token pair
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} dto.LoginResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := validateRequest(w, r, &req); err != nil {
		return
	}

	user, tokens, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		case errors.Is(err, domain.ErrUserInactive):
			http.Error(w, "Account is deactivated", http.StatusForbidden)
		default:
			h.logger.Error("failed to log in", zap.Error(err))
			http.Error(w, "Failed to log in", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, http.StatusOK, dto.LoginResponse{
		User:         dto.NewUserResponse(user),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
	})
}

// RefreshHandler exchanges a refresh token for a new token pair
func (h *AuthHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	if err := validateRequest(w, r, &req); err != nil {
		return
	}

	tokens, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrInvalidToken):
			http.Error(w, "Invalid refresh token", http.StatusUnauthorized)
		case errors.Is(err, domain.ErrUserInactive):
			http.Error(w, "Account is deactivated", http.StatusForbidden)
		default:
			h.logger.Error("failed to refresh token", zap.Error(err))
			http.Error(w, "Failed to refresh token", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, http.StatusOK, tokens)
}

// VerifyEmailHandler checks the submitted code and marks the account verified
func (h *AuthHandler) VerifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
		Code  string `json:"code" validate:"required"`
	}

	if err := validateRequest(w, r, &req); err != nil {
		return
	}

	ok, message, err := h.authService.VerifyEmail(r.Context(), req.Email, req.Code)
	if err != nil {
		h.logger.Error("failed to verify email", zap.Error(err))
		http.Error(w, "Failed to verify email", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if !ok {
		status = http.StatusBadRequest
	}
	respondJSON(w, status, messageResponse{Success: ok, Message: message})
}

// RequestPasswordResetHandler issues a password reset code
func (h *AuthHandler) RequestPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}

	if err := validateRequest(w, r, &req); err != nil {
		return
	}

	_, err := h.authService.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		if cooldown, ok := domain.IsOTPCooldown(err); ok {
			respondJSON(w, http.StatusTooManyRequests, messageResponse{Success: false, Message: cooldown.Error()})
			return
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			http.Error(w, "No account with that email", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to request password reset", zap.Error(err))
		http.Error(w, "Failed to request password reset", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Password reset code sent"})
}

// ResetPasswordHandler verifies the reset code and replaces the password
func (h *AuthHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email" validate:"required,email"`
		Code        string `json:"code" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,min=8"`
	}

	if err := validateRequest(w, r, &req); err != nil {
		return
	}

	ok, message, err := h.authService.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword)
	if err != nil {
		h.logger.Error("failed to reset password", zap.Error(err))
		http.Error(w, "Failed to reset password", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if !ok {
		status = http.StatusBadRequest
	}
	respondJSON(w, status, messageResponse{Success: ok, Message: message})
}
