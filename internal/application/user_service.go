package application

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sonirghv/Gemini-backend/internal/domain"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/password"
	"go.uber.org/zap"
)

// UserService handles profile and admin user management
type UserService struct {
	users    domain.UserRepository
	chats    domain.ChatRepository
	messages domain.MessageRepository
	logger   *zap.Logger
}

func NewUserService(users domain.UserRepository, chats domain.ChatRepository, messages domain.MessageRepository, logger *zap.Logger) *UserService {
	return &UserService{
		users:    users,
		chats:    chats,
		messages: messages,
		logger:   logger,
	}
}

// GetProfile returns a user's profile
func (s *UserService) GetProfile(ctx context.Context, userID ulid.ULID) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// ProfileUpdate carries optional profile changes; nil fields are untouched
type ProfileUpdate struct {
	Email    *string
	Username *string
	FullName *string
}

// UpdateProfile applies the given changes, enforcing email and username uniqueness
func (s *UserService) UpdateProfile(ctx context.Context, userID ulid.ULID, update ProfileUpdate) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Email != nil && *update.Email != user.Email {
		exists, err := s.users.ExistsByEmail(ctx, *update.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrUserAlreadyExists
		}
		user.Email = *update.Email
		user.IsVerified = false
	}

	if update.Username != nil && *update.Username != user.Username {
		exists, err := s.users.ExistsByUsername(ctx, *update.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrUsernameTaken
		}
		user.Username = *update.Username
	}

	if update.FullName != nil {
		user.FullName = *update.FullName
	}

	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error("failed to update user", zap.Error(err))
		return nil, domain.ErrInternal
	}
	return user, nil
}

// ChangePassword verifies the current password and stores a new one
func (s *UserService) ChangePassword(ctx context.Context, userID ulid.ULID, current, next string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := password.CheckPassword(current, user.Password); err != nil {
		return domain.ErrInvalidCredentials
	}

	hashed, err := password.HashPassword(next)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return domain.ErrInternal
	}
	return s.users.UpdatePassword(ctx, userID, hashed)
}

// UserOverview is a user row on the admin dashboard
type UserOverview struct {
	*domain.User
	ChatCount    int64 `json:"chat_count"`
	MessageCount int64 `json:"message_count"`
}

// ListUsers returns a page of users with their chat and message counts
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*UserOverview, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	overviews := make([]*UserOverview, 0, len(users))
	for _, user := range users {
		chatCount, err := s.chats.CountByUser(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		messageCount, err := s.messages.CountByUser(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		overviews = append(overviews, &UserOverview{
			User:         user,
			ChatCount:    chatCount,
			MessageCount: messageCount,
		})
	}
	return overviews, nil
}

// AdminUpdate carries the account flags an administrator can change
type AdminUpdate struct {
	IsActive   *bool
	IsAdmin    *bool
	IsVerified *bool
}

// AdminUpdateUser applies account flag changes to another user
func (s *UserService) AdminUpdateUser(ctx context.Context, userID ulid.ULID, update AdminUpdate) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.IsActive != nil {
		user.IsActive = *update.IsActive
	}
	if update.IsAdmin != nil {
		user.IsAdmin = *update.IsAdmin
	}
	if update.IsVerified != nil {
		user.IsVerified = *update.IsVerified
	}

	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error("failed to update user", zap.Error(err))
		return nil, domain.ErrInternal
	}
	return user, nil
}

// DeactivateUser soft-deletes an account. Administrators cannot deactivate
// themselves.
func (s *UserService) DeactivateUser(ctx context.Context, userID, actorID ulid.ULID) error {
	if userID == actorID {
		return domain.ErrCannotDeactivateSelf
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	user.IsActive = false
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error("failed to deactivate user", zap.Error(err))
		return domain.ErrInternal
	}
	return nil
}

// Stats aggregates the admin dashboard numbers
func (s *UserService) Stats(ctx context.Context) (*domain.AdminStats, error) {
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalChats, err := s.chats.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalMessages, err := s.messages.Count(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	activeToday, err := s.users.CountActiveSince(ctx, dayStart)
	if err != nil {
		return nil, err
	}
	newThisWeek, err := s.users.CountCreatedSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}

	return &domain.AdminStats{
		TotalUsers:       totalUsers,
		TotalChats:       totalChats,
		TotalMessages:    totalMessages,
		ActiveUsersToday: activeToday,
		NewUsersThisWeek: newThisWeek,
	}, nil
}
