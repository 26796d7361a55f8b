package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sonirghv/Gemini-backend/internal/domain"
	"go.uber.org/zap"
)

const (
	// contextTurns is how many prior messages are replayed to the model
	contextTurns = 5

	// maxTitleLength caps chat titles derived from the first message
	maxTitleLength = 50

	replyCacheTTL = 10 * time.Minute
)

// replyCache is the slice of the TTL store the chat service uses to avoid
// regenerating replies to repeated text-only prompts.
type replyCache interface {
	Get(key string, def any) any
	Set(key string, value any, ttl time.Duration)
}

// ChatService handles conversations and AI reply generation
type ChatService struct {
	chats     domain.ChatRepository
	messages  domain.MessageRepository
	generator domain.ResponseGenerator
	cache     replyCache
	logger    *zap.Logger
}

func NewChatService(chats domain.ChatRepository, messages domain.MessageRepository, generator domain.ResponseGenerator, cache replyCache, logger *zap.Logger) *ChatService {
	return &ChatService{
		chats:     chats,
		messages:  messages,
		generator: generator,
		cache:     cache,
		logger:    logger,
	}
}

// CreateChat starts a new conversation
func (s *ChatService) CreateChat(ctx context.Context, userID ulid.ULID, title string) (*domain.Chat, error) {
	if title == "" {
		title = "New Chat"
	}
	chat := domain.NewChat(userID, truncateTitle(title))
	if err := s.chats.Create(ctx, chat); err != nil {
		s.logger.Error("failed to create chat", zap.Error(err))
		return nil, domain.ErrInternal
	}
	return chat, nil
}

// ListChats returns the user's active chats, most recent first
func (s *ChatService) ListChats(ctx context.Context, userID ulid.ULID) ([]*domain.Chat, error) {
	return s.chats.ListByUser(ctx, userID)
}

// GetChat returns a chat with its full message history
func (s *ChatService) GetChat(ctx context.Context, chatID, userID ulid.ULID) (*domain.Chat, []*domain.Message, error) {
	chat, err := s.chats.FindByID(ctx, chatID, userID)
	if err != nil {
		return nil, nil, err
	}
	messages, err := s.messages.ListByChat(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}
	return chat, messages, nil
}

// RenameChat changes a chat's title
func (s *ChatService) RenameChat(ctx context.Context, chatID, userID ulid.ULID, title string) (*domain.Chat, error) {
	chat, err := s.chats.FindByID(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	chat.Title = truncateTitle(title)
	chat.UpdatedAt = time.Now()
	if err := s.chats.Update(ctx, chat); err != nil {
		s.logger.Error("failed to rename chat", zap.Error(err))
		return nil, domain.ErrInternal
	}
	return chat, nil
}

// DeleteChat soft-deletes a chat
func (s *ChatService) DeleteChat(ctx context.Context, chatID, userID ulid.ULID) error {
	if _, err := s.chats.FindByID(ctx, chatID, userID); err != nil {
		return err
	}
	return s.chats.Deactivate(ctx, chatID, userID)
}

// SendMessage persists the user's message, generates the assistant reply and
// persists it. A zero chatID starts a new chat titled after the message.
func (s *ChatService) SendMessage(ctx context.Context, chatID, userID ulid.ULID, content, imageData string) (*domain.Chat, *domain.Message, *domain.Message, error) {
	if imageData != "" && !s.generator.ValidateImage(imageData) {
		return nil, nil, nil, domain.ErrInvalidImage
	}

	var chat *domain.Chat
	var err error
	if chatID == (ulid.ULID{}) {
		chat = domain.NewChat(userID, truncateTitle(content))
		if err := s.chats.Create(ctx, chat); err != nil {
			s.logger.Error("failed to create chat", zap.Error(err))
			return nil, nil, nil, domain.ErrInternal
		}
	} else {
		chat, err = s.chats.FindByID(ctx, chatID, userID)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	turns, err := s.recentTurns(ctx, chat.ID)
	if err != nil {
		return nil, nil, nil, err
	}

	userMessage := domain.NewMessage(chat.ID, userID, domain.RoleUser, content, imageData)
	if err := s.messages.Create(ctx, userMessage); err != nil {
		s.logger.Error("failed to store user message", zap.Error(err))
		return nil, nil, nil, domain.ErrInternal
	}

	reply, err := s.generateReply(ctx, content, imageData, turns)
	if err != nil {
		s.logger.Error("failed to generate reply", zap.Error(err))
		return nil, nil, nil, err
	}

	assistantMessage := domain.NewMessage(chat.ID, userID, domain.RoleAssistant, reply, "")
	if err := s.messages.Create(ctx, assistantMessage); err != nil {
		s.logger.Error("failed to store assistant message", zap.Error(err))
		return nil, nil, nil, domain.ErrInternal
	}

	if err := s.chats.Touch(ctx, chat.ID, assistantMessage.CreatedAt); err != nil {
		s.logger.Warn("failed to touch chat", zap.Error(err))
	}
	chat.UpdatedAt = assistantMessage.CreatedAt

	return chat, userMessage, assistantMessage, nil
}

// generateReply consults the cache for text-only prompts without history
// before calling the model.
func (s *ChatService) generateReply(ctx context.Context, content, imageData string, turns []domain.ChatTurn) (string, error) {
	cacheable := imageData == "" && len(turns) == 0
	var key string
	if cacheable {
		sum := sha256.Sum256([]byte(content))
		key = fmt.Sprintf("reply:%s", hex.EncodeToString(sum[:]))
		if cached, ok := s.cache.Get(key, nil).(string); ok {
			return cached, nil
		}
	}

	reply, err := s.generator.GenerateResponse(ctx, content, imageData, turns)
	if err != nil {
		return "", err
	}

	if cacheable {
		s.cache.Set(key, reply, replyCacheTTL)
	}
	return reply, nil
}

// recentTurns loads the newest messages of a chat in chronological order
func (s *ChatService) recentTurns(ctx context.Context, chatID ulid.ULID) ([]domain.ChatTurn, error) {
	recent, err := s.messages.ListRecent(ctx, chatID, contextTurns)
	if err != nil {
		return nil, err
	}

	turns := make([]domain.ChatTurn, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		turns = append(turns, domain.ChatTurn{
			Role:    recent[i].Role,
			Content: recent[i].Content,
		})
	}
	return turns, nil
}

func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= maxTitleLength {
		return title
	}
	return string(runes[:maxTitleLength]) + "..."
}
