package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"github.com/sonirghv/Gemini-backend/internal/application"
	"github.com/sonirghv/Gemini-backend/internal/domain"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/memstore"
	"github.com/sonirghv/Gemini-backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

type AdminService interface {
	ListUsers(ctx context.Context, limit, offset int) ([]*application.UserOverview, error)
	AdminUpdateUser(ctx context.Context, userID ulid.ULID, update application.AdminUpdate) (*domain.User, error)
	DeactivateUser(ctx context.Context, userID, actorID ulid.ULID) error
	Stats(ctx context.Context) (*domain.AdminStats, error)
}

// StoreStats exposes the cache and limiter counters for the admin surface
type StoreStats interface {
	Stats() memstore.Stats
}

type LimiterStats interface {
	Stats() memstore.LimiterStats
}

type AdminHandler struct {
	adminService AdminService
	store        StoreStats
	limiter      LimiterStats
	logger       *zap.Logger
}

func NewAdminHandler(adminService AdminService, store StoreStats, limiter LimiterStats, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		store:        store,
		limiter:      limiter,
		logger:       logger,
	}
}

type userOverviewResponse struct {
	*dto.UserResponse
	ChatCount    int64 `json:"chat_count"`
	MessageCount int64 `json:"message_count"`
}

// ListUsersHandler returns a page of users with usage counts
func (h *AdminHandler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	overviews, err := h.adminService.ListUsers(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		http.Error(w, "Failed to list users", http.StatusInternalServerError)
		return
	}

	responses := make([]*userOverviewResponse, 0, len(overviews))
	for _, overview := range overviews {
		responses = append(responses, &userOverviewResponse{
			UserResponse: dto.NewUserResponse(overview.User),
			ChatCount:    overview.ChatCount,
			MessageCount: overview.MessageCount,
		})
	}
	respondJSON(w, http.StatusOK, responses)
}

// UpdateUserHandler changes another user's account flags
func (h *AdminHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := domain.ParseULID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var req struct {
		IsActive   *bool `json:"is_active"`
		IsAdmin    *bool `json:"is_admin"`
		IsVerified *bool `json:"is_verified"`
	}

	if err := validateRequest(w, r, &req); err != nil {
		return
	}

	user, err := h.adminService.AdminUpdateUser(r.Context(), userID, application.AdminUpdate{
		IsActive:   req.IsActive,
		IsAdmin:    req.IsAdmin,
		IsVerified: req.IsVerified,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update user", zap.Error(err))
		http.Error(w, "Failed to update user", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewUserResponse(user))
}

// DeactivateUserHandler soft-deletes another user's account
func (h *AdminHandler) DeactivateUserHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := domain.ParseULID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.adminService.DeactivateUser(r.Context(), userID, actorID); err != nil {
		switch {
		case errors.Is(err, domain.ErrCannotDeactivateSelf):
			http.Error(w, "Cannot deactivate your own account", http.StatusBadRequest)
		case errors.Is(err, domain.ErrUserNotFound):
			http.Error(w, "User not found", http.StatusNotFound)
		default:
			h.logger.Error("failed to deactivate user", zap.Error(err))
			http.Error(w, "Failed to deactivate user", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{Success: true, Message: "User deactivated"})
}

// StatsHandler returns the dashboard aggregates
func (h *AdminHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to load stats", zap.Error(err))
		http.Error(w, "Failed to load stats", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// CacheStatsHandler reports the TTL store counters
func (h *AdminHandler) CacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Stats())
}

// LimiterStatsHandler reports the rate limiter counters
func (h *AdminHandler) LimiterStatsHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.limiter.Stats())
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}
