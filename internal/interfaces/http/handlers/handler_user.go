package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/oklog/ulid/v2"
	"github.com/sonirghv/Gemini-backend/internal/application"
	"github.com/sonirghv/Gemini-backend/internal/domain"
	"github.com/sonirghv/Gemini-backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID ulid.ULID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID ulid.ULID, update application.ProfileUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, userID ulid.ULID, current, next string) error
}

type UserHandler struct {
	userService UserService
	logger      *zap.Logger
}

func NewUserHandler(userService UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// GetProfileHandler returns the authenticated user's profile
func (h *UserHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load profile", zap.Error(err))
		http.Error(w, "Failed to load profile", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewUserResponse(user))
}

// UpdateProfileHandler applies partial profile changes
func (h *UserHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Email    *string `json:"email" validate:"omitempty,email"`
		Username *string `json:"username" validate:"omitempty,min=3,max=50"`
		FullName *string `json:"full_name"`
	}

	if err := validateRequest(w, r, &req); err != nil {
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, application.ProfileUpdate{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserAlreadyExists):
			http.Error(w, "Email already registered", http.StatusConflict)
		case errors.Is(err, domain.ErrUsernameTaken):
			http.Error(w, "Username already taken", http.StatusConflict)
		case errors.Is(err, domain.ErrUserNotFound):
			http.Error(w, "User not found", http.StatusNotFound)
		default:
			h.logger.Error("failed to update profile", zap.Error(err))
			http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, http.StatusOK, dto.NewUserResponse(user))
}

// ChangePasswordHandler replaces the user's password after checking the current one
func (h *UserHandler) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=8"`
	}

	if err := validateRequest(w, r, &req); err != nil {
		return
	}

	if err := h.userService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			http.Error(w, "Current password is incorrect", http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to change password", zap.Error(err))
		http.Error(w, "Failed to change password", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Password changed successfully"})
}
