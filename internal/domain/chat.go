package domain

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// Chat groups related messages into a conversation
type Chat struct {
	ID           ulid.ULID `json:"id"`
	Title        string    `json:"title"`
	UserID       ulid.ULID `json:"user_id"`
	IsActive     bool      `json:"is_active"`
	MessageCount int64     `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewChat creates a new active chat for a user
func NewChat(userID ulid.ULID, title string) *Chat {
	now := time.Now()
	return &Chat{
		ID:        ulid.Make(),
		Title:     title,
		UserID:    userID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message, either from the user or the assistant
type Message struct {
	ID        ulid.ULID `json:"id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	ChatID    ulid.ULID `json:"chat_id"`
	UserID    ulid.ULID `json:"user_id"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a message in a chat
func NewMessage(chatID, userID ulid.ULID, role, content, imageURL string) *Message {
	return &Message{
		ID:        ulid.Make(),
		Content:   content,
		Role:      role,
		ChatID:    chatID,
		UserID:    userID,
		ImageURL:  imageURL,
		CreatedAt: time.Now(),
	}
}

// ChatRepository defines the interface for chat data access
type ChatRepository interface {
	Create(ctx context.Context, chat *Chat) error

	// FindByID finds a chat owned by the given user
	FindByID(ctx context.Context, id, userID ulid.ULID) (*Chat, error)

	// ListByUser lists the user's active chats, most recently updated first
	ListByUser(ctx context.Context, userID ulid.ULID) ([]*Chat, error)

	Update(ctx context.Context, chat *Chat) error

	// Touch bumps the chat's updated_at timestamp
	Touch(ctx context.Context, id ulid.ULID, at time.Time) error

	// Deactivate soft-deletes a chat
	Deactivate(ctx context.Context, id, userID ulid.ULID) error

	Count(ctx context.Context) (int64, error)

	// CountByUser counts all chats owned by a user
	CountByUser(ctx context.Context, userID ulid.ULID) (int64, error)
}

// MessageRepository defines the interface for message data access
type MessageRepository interface {
	Create(ctx context.Context, message *Message) error

	// ListByChat lists a chat's messages in creation order
	ListByChat(ctx context.Context, chatID ulid.ULID) ([]*Message, error)

	// ListRecent returns the chat's newest messages, newest first, up to limit
	ListRecent(ctx context.Context, chatID ulid.ULID, limit int) ([]*Message, error)

	Count(ctx context.Context) (int64, error)

	// CountByChat counts messages in a chat
	CountByChat(ctx context.Context, chatID ulid.ULID) (int64, error)

	// CountByUser counts all messages written by or for a user
	CountByUser(ctx context.Context, userID ulid.ULID) (int64, error)
}
