package application

import (
	"context"
	"testing"
	"time"

	"github.com/sonirghv/Gemini-backend/internal/domain"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newUserFixture() (*UserService, *mockUserRepository, *mockChatRepository, *mockMessageRepository) {
	users := new(mockUserRepository)
	chats := new(mockChatRepository)
	messages := new(mockMessageRepository)
	service := NewUserService(users, chats, messages, zap.NewNop())
	return service, users, chats, messages
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("change full name only", func(t *testing.T) {
		service, users, _, _ := newUserFixture()
		user := domain.NewUser("u@x.com", "u", "hash", "Old Name")
		users.On("FindByID", ctx, user.ID).Return(user, nil)
		users.On("Update", ctx, user).Return(nil)

		got, err := service.UpdateProfile(ctx, user.ID, ProfileUpdate{FullName: strPtr("New Name")})

		assert.NoError(t, err)
		assert.Equal(t, "New Name", got.FullName)
		assert.Equal(t, "u@x.com", got.Email)
	})

	t.Run("changing email resets verification", func(t *testing.T) {
		service, users, _, _ := newUserFixture()
		user := domain.NewUser("old@x.com", "u", "hash", "")
		user.IsVerified = true
		users.On("FindByID", ctx, user.ID).Return(user, nil)
		users.On("ExistsByEmail", ctx, "new@x.com").Return(false, nil)
		users.On("Update", ctx, user).Return(nil)

		got, err := service.UpdateProfile(ctx, user.ID, ProfileUpdate{Email: strPtr("new@x.com")})

		assert.NoError(t, err)
		assert.Equal(t, "new@x.com", got.Email)
		assert.False(t, got.IsVerified)
	})

	t.Run("email already in use", func(t *testing.T) {
		service, users, _, _ := newUserFixture()
		user := domain.NewUser("old@x.com", "u", "hash", "")
		users.On("FindByID", ctx, user.ID).Return(user, nil)
		users.On("ExistsByEmail", ctx, "taken@x.com").Return(true, nil)

		_, err := service.UpdateProfile(ctx, user.ID, ProfileUpdate{Email: strPtr("taken@x.com")})
		assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	})

	t.Run("username already in use", func(t *testing.T) {
		service, users, _, _ := newUserFixture()
		user := domain.NewUser("u@x.com", "u", "hash", "")
		users.On("FindByID", ctx, user.ID).Return(user, nil)
		users.On("ExistsByUsername", ctx, "taken").Return(true, nil)

		_, err := service.UpdateProfile(ctx, user.ID, ProfileUpdate{Username: strPtr("taken")})
		assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	})

	t.Run("unchanged email skips uniqueness check", func(t *testing.T) {
		service, users, _, _ := newUserFixture()
		user := domain.NewUser("u@x.com", "u", "hash", "")
		user.IsVerified = true
		users.On("FindByID", ctx, user.ID).Return(user, nil)
		users.On("Update", ctx, user).Return(nil)

		got, err := service.UpdateProfile(ctx, user.ID, ProfileUpdate{Email: strPtr("u@x.com")})

		assert.NoError(t, err)
		assert.True(t, got.IsVerified)
		users.AssertNotCalled(t, "ExistsByEmail", ctx, "u@x.com")
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("correct current password", func(t *testing.T) {
		service, users, _, _ := newUserFixture()
		hashed, err := password.HashPassword("current")
		assert.NoError(t, err)
		user := domain.NewUser("u@x.com", "u", hashed, "")
		users.On("FindByID", ctx, user.ID).Return(user, nil)
		users.On("UpdatePassword", ctx, user.ID, mock.AnythingOfType("string")).Return(nil)

		assert.NoError(t, service.ChangePassword(ctx, user.ID, "current", "next"))
		users.AssertExpectations(t)
	})

	t.Run("wrong current password", func(t *testing.T) {
		service, users, _, _ := newUserFixture()
		hashed, err := password.HashPassword("current")
		assert.NoError(t, err)
		user := domain.NewUser("u@x.com", "u", hashed, "")
		users.On("FindByID", ctx, user.ID).Return(user, nil)

		err = service.ChangePassword(ctx, user.ID, "wrong", "next")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		users.AssertNotCalled(t, "UpdatePassword", ctx, user.ID, mock.Anything)
	})
}

func TestUserService_ListUsers(t *testing.T) {
	ctx := context.Background()
	service, users, chats, messages := newUserFixture()

	a := domain.NewUser("a@x.com", "a", "hash", "")
	b := domain.NewUser("b@x.com", "b", "hash", "")
	users.On("List", ctx, 20, 0).Return([]*domain.User{a, b}, nil)
	chats.On("CountByUser", ctx, a.ID).Return(int64(3), nil)
	chats.On("CountByUser", ctx, b.ID).Return(int64(0), nil)
	messages.On("CountByUser", ctx, a.ID).Return(int64(12), nil)
	messages.On("CountByUser", ctx, b.ID).Return(int64(0), nil)

	overviews, err := service.ListUsers(ctx, 20, 0)

	assert.NoError(t, err)
	assert.Len(t, overviews, 2)
	assert.Equal(t, int64(3), overviews[0].ChatCount)
	assert.Equal(t, int64(12), overviews[0].MessageCount)
	assert.Equal(t, int64(0), overviews[1].ChatCount)
}

func TestUserService_AdminUpdateUser(t *testing.T) {
	ctx := context.Background()
	service, users, _, _ := newUserFixture()

	user := domain.NewUser("u@x.com", "u", "hash", "")
	users.On("FindByID", ctx, user.ID).Return(user, nil)
	users.On("Update", ctx, user).Return(nil)

	got, err := service.AdminUpdateUser(ctx, user.ID, AdminUpdate{
		IsAdmin:    boolPtr(true),
		IsVerified: boolPtr(true),
	})

	assert.NoError(t, err)
	assert.True(t, got.IsAdmin)
	assert.True(t, got.IsVerified)
	assert.True(t, got.IsActive)
}

func TestUserService_DeactivateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivates another account", func(t *testing.T) {
		service, users, _, _ := newUserFixture()
		user := domain.NewUser("u@x.com", "u", "hash", "")
		admin := domain.NewUser("admin@x.com", "admin", "hash", "")
		users.On("FindByID", ctx, user.ID).Return(user, nil)
		users.On("Update", ctx, user).Return(nil)

		assert.NoError(t, service.DeactivateUser(ctx, user.ID, admin.ID))
		assert.False(t, user.IsActive)
	})

	t.Run("refuses self-deactivation", func(t *testing.T) {
		service, users, _, _ := newUserFixture()
		admin := domain.NewUser("admin@x.com", "admin", "hash", "")

		err := service.DeactivateUser(ctx, admin.ID, admin.ID)
		assert.ErrorIs(t, err, domain.ErrCannotDeactivateSelf)
		users.AssertNotCalled(t, "Update", ctx, mock.Anything)
	})
}

func TestUserService_Stats(t *testing.T) {
	ctx := context.Background()
	service, users, chats, messages := newUserFixture()

	users.On("Count", ctx).Return(int64(10), nil)
	chats.On("Count", ctx).Return(int64(25), nil)
	messages.On("Count", ctx).Return(int64(140), nil)
	users.On("CountActiveSince", ctx, mock.AnythingOfType("time.Time")).Return(int64(4), nil)
	users.On("CountCreatedSince", ctx, mock.AnythingOfType("time.Time")).Return(int64(2), nil)

	stats, err := service.Stats(ctx)

	assert.NoError(t, err)
	assert.Equal(t, &domain.AdminStats{
		TotalUsers:       10,
		TotalChats:       25,
		TotalMessages:    140,
		ActiveUsersToday: 4,
		NewUsersThisWeek: 2,
	}, stats)

	// Both windows are anchored to the current clock
	sinceCalls := 0
	for _, call := range users.Calls {
		if call.Method == "CountActiveSince" || call.Method == "CountCreatedSince" {
			since := call.Arguments.Get(1).(time.Time)
			assert.True(t, since.Before(time.Now()))
			sinceCalls++
		}
	}
	assert.Equal(t, 2, sinceCalls)
}
