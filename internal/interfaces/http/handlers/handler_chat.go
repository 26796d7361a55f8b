package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"github.com/sonirghv/Gemini-backend/internal/domain"
	"github.com/sonirghv/Gemini-backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

type ChatService interface {
	CreateChat(ctx context.Context, userID ulid.ULID, title string) (*domain.Chat, error)
	ListChats(ctx context.Context, userID ulid.ULID) ([]*domain.Chat, error)
	GetChat(ctx context.Context, chatID, userID ulid.ULID) (*domain.Chat, []*domain.Message, error)
	RenameChat(ctx context.Context, chatID, userID ulid.ULID, title string) (*domain.Chat, error)
	DeleteChat(ctx context.Context, chatID, userID ulid.ULID) error
	SendMessage(ctx context.Context, chatID, userID ulid.ULID, content, imageData string) (*domain.Chat, *domain.Message, *domain.Message, error)
}

type ChatHandler struct {
	chatService ChatService
	logger      *zap.Logger
}

func NewChatHandler(chatService ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// chatIDParam parses the {id} URL parameter
func chatIDParam(w http.ResponseWriter, r *http.Request) (ulid.ULID, bool) {
	id, err := domain.ParseULID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid chat ID", http.StatusBadRequest)
		return ulid.ULID{}, false
	}
	return id, true
}

// CreateChatHandler starts a new conversation
func (h *ChatHandler) CreateChatHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Title string `json:"title" validate:"max=200"`
	}

	if err := validateRequest(w, r, &req); err != nil {
		return
	}

	chat, err := h.chatService.CreateChat(r.Context(), userID, req.Title)
	if err != nil {
		h.logger.Error("failed to create chat", zap.Error(err))
		http.Error(w, "Failed to create chat", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewChatResponse(chat))
}

// ListChatsHandler returns the user's active chats
func (h *ChatHandler) ListChatsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chats, err := h.chatService.ListChats(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list chats", zap.Error(err))
		http.Error(w, "Failed to list chats", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewChatListResponse(chats))
}

// GetChatHandler returns a chat with its messages
func (h *ChatHandler) GetChatHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chatID, ok := chatIDParam(w, r)
	if !ok {
		return
	}

	chat, messages, err := h.chatService.GetChat(r.Context(), chatID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrChatNotFound) {
			http.Error(w, "Chat not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load chat", zap.Error(err))
		http.Error(w, "Failed to load chat", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Chat     *dto.ChatResponse      `json:"chat"`
		Messages []*dto.MessageResponse `json:"messages"`
	}{
		Chat:     dto.NewChatResponse(chat),
		Messages: dto.NewMessageListResponse(messages),
	})
}

// RenameChatHandler changes a chat's title
func (h *ChatHandler) RenameChatHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chatID, ok := chatIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Title string `json:"title" validate:"required,max=200"`
	}

	if err := validateRequest(w, r, &req); err != nil {
		return
	}

	chat, err := h.chatService.RenameChat(r.Context(), chatID, userID, req.Title)
	if err != nil {
		if errors.Is(err, domain.ErrChatNotFound) {
			http.Error(w, "Chat not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to rename chat", zap.Error(err))
		http.Error(w, "Failed to rename chat", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewChatResponse(chat))
}

// DeleteChatHandler soft-deletes a chat
func (h *ChatHandler) DeleteChatHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chatID, ok := chatIDParam(w, r)
	if !ok {
		return
	}

	if err := h.chatService.DeleteChat(r.Context(), chatID, userID); err != nil {
		if errors.Is(err, domain.ErrChatNotFound) {
			http.Error(w, "Chat not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete chat", zap.Error(err))
		http.Error(w, "Failed to delete chat", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Chat deleted"})
}

// SendMessageHandler sends a message and returns the generated reply. An empty
// chat_id starts a new conversation.
func (h *ChatHandler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		ChatID    string `json:"chat_id"`
		Content   string `json:"content" validate:"required"`
		ImageData string `json:"image_data"`
	}

	if err := validateRequest(w, r, &req); err != nil {
		return
	}

	var chatID ulid.ULID
	if req.ChatID != "" {
		var err error
		chatID, err = domain.ParseULID(req.ChatID)
		if err != nil {
			http.Error(w, "Invalid chat ID", http.StatusBadRequest)
			return
		}
	}

	chat, userMessage, reply, err := h.chatService.SendMessage(r.Context(), chatID, userID, req.Content, req.ImageData)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrChatNotFound):
			http.Error(w, "Chat not found", http.StatusNotFound)
		case errors.Is(err, domain.ErrInvalidImage):
			http.Error(w, "Invalid image format or size", http.StatusBadRequest)
		default:
			h.logger.Error("failed to send message", zap.Error(err))
			http.Error(w, "Failed to generate a reply", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, http.StatusOK, dto.SendMessageResponse{
		Chat:        dto.NewChatResponse(chat),
		UserMessage: dto.NewMessageResponse(userMessage),
		Reply:       dto.NewMessageResponse(reply),
	})
}
