package dto

import (
	"time"

	"github.com/sonirghv/Gemini-backend/internal/domain"
)

type ChatResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int64     `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewChatResponse(chat *domain.Chat) *ChatResponse {
	return &ChatResponse{
		ID:           chat.ID.String(),
		Title:        chat.Title,
		MessageCount: chat.MessageCount,
		CreatedAt:    chat.CreatedAt,
		UpdatedAt:    chat.UpdatedAt,
	}
}

func NewChatListResponse(chats []*domain.Chat) []*ChatResponse {
	responses := make([]*ChatResponse, 0, len(chats))
	for _, chat := range chats {
		responses = append(responses, NewChatResponse(chat))
	}
	return responses
}

type MessageResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	ChatID    string    `json:"chat_id"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMessageResponse(message *domain.Message) *MessageResponse {
	return &MessageResponse{
		ID:        message.ID.String(),
		Content:   message.Content,
		Role:      message.Role,
		ChatID:    message.ChatID.String(),
		ImageURL:  message.ImageURL,
		CreatedAt: message.CreatedAt,
	}
}

func NewMessageListResponse(messages []*domain.Message) []*MessageResponse {
	responses := make([]*MessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, NewMessageResponse(message))
	}
	return responses
}

type SendMessageResponse struct {
	Chat        *ChatResponse    `json:"chat"`
	UserMessage *MessageResponse `json:"user_message"`
	Reply       *MessageResponse `json:"reply"`
}
