package application

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sonirghv/Gemini-backend/internal/domain"
	"github.com/stretchr/testify/mock"
)

// stubEmailSender records dispatch attempts and returns a canned outcome
type stubEmailSender struct {
	mu          sync.Mutex
	sendOK      bool
	sendMessage string
	otpCalls    int
	welcomeOK   bool
}

func (s *stubEmailSender) SendOTPEmail(ctx context.Context, email, code string, purpose domain.OTPPurpose) (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.otpCalls++
	return s.sendOK, s.sendMessage
}

func (s *stubEmailSender) SendWelcomeEmail(ctx context.Context, email, username string) (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.welcomeOK = true
	return s.sendOK, s.sendMessage
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id ulid.ULID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, userID ulid.ULID, hashedPassword string) error {
	args := m.Called(ctx, userID, hashedPassword)
	return args.Error(0)
}

func (m *mockUserRepository) UpdateLastLogin(ctx context.Context, userID ulid.ULID, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

func (m *mockUserRepository) MarkVerified(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *mockUserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *mockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepository) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

type mockChatRepository struct {
	mock.Mock
}

func (m *mockChatRepository) Create(ctx context.Context, chat *domain.Chat) error {
	args := m.Called(ctx, chat)
	return args.Error(0)
}

func (m *mockChatRepository) FindByID(ctx context.Context, id, userID ulid.ULID) (*domain.Chat, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *mockChatRepository) ListByUser(ctx context.Context, userID ulid.ULID) ([]*domain.Chat, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Chat), args.Error(1)
}

func (m *mockChatRepository) Update(ctx context.Context, chat *domain.Chat) error {
	args := m.Called(ctx, chat)
	return args.Error(0)
}

func (m *mockChatRepository) Touch(ctx context.Context, id ulid.ULID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *mockChatRepository) Deactivate(ctx context.Context, id, userID ulid.ULID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *mockChatRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockChatRepository) CountByUser(ctx context.Context, userID ulid.ULID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type mockMessageRepository struct {
	mock.Mock
}

func (m *mockMessageRepository) Create(ctx context.Context, message *domain.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *mockMessageRepository) ListByChat(ctx context.Context, chatID ulid.ULID) ([]*domain.Message, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

func (m *mockMessageRepository) ListRecent(ctx context.Context, chatID ulid.ULID, limit int) ([]*domain.Message, error) {
	args := m.Called(ctx, chatID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

func (m *mockMessageRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMessageRepository) CountByChat(ctx context.Context, chatID ulid.ULID) (int64, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMessageRepository) CountByUser(ctx context.Context, userID ulid.ULID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type mockResponseGenerator struct {
	mock.Mock
}

func (m *mockResponseGenerator) GenerateResponse(ctx context.Context, message, imageData string, turns []domain.ChatTurn) (string, error) {
	args := m.Called(ctx, message, imageData, turns)
	return args.String(0), args.Error(1)
}

func (m *mockResponseGenerator) ValidateImage(imageData string) bool {
	args := m.Called(imageData)
	return args.Bool(0)
}

// fakeCache is a plain map standing in for the TTL store
type fakeCache struct {
	values map[string]any
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]any)}
}

func (c *fakeCache) Get(key string, def any) any {
	if v, ok := c.values[key]; ok {
		return v
	}
	return def
}

func (c *fakeCache) Set(key string, value any, ttl time.Duration) {
	c.values[key] = value
	c.sets++
}
