package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"github.com/sonirghv/Gemini-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockChatService struct {
	mock.Mock
}

func (m *mockChatService) CreateChat(ctx context.Context, userID ulid.ULID, title string) (*domain.Chat, error) {
	args := m.Called(ctx, userID, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *mockChatService) ListChats(ctx context.Context, userID ulid.ULID) ([]*domain.Chat, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Chat), args.Error(1)
}

func (m *mockChatService) GetChat(ctx context.Context, chatID, userID ulid.ULID) (*domain.Chat, []*domain.Message, error) {
	args := m.Called(ctx, chatID, userID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Chat), args.Get(1).([]*domain.Message), args.Error(2)
}

func (m *mockChatService) RenameChat(ctx context.Context, chatID, userID ulid.ULID, title string) (*domain.Chat, error) {
	args := m.Called(ctx, chatID, userID, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *mockChatService) DeleteChat(ctx context.Context, chatID, userID ulid.ULID) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}

func (m *mockChatService) SendMessage(ctx context.Context, chatID, userID ulid.ULID, content, imageData string) (*domain.Chat, *domain.Message, *domain.Message, error) {
	args := m.Called(ctx, chatID, userID, content, imageData)
	if args.Get(0) == nil {
		return nil, nil, nil, args.Error(3)
	}
	return args.Get(0).(*domain.Chat), args.Get(1).(*domain.Message), args.Get(2).(*domain.Message), args.Error(3)
}

// authedRequest builds a request carrying an authenticated user ID
func authedRequest(t *testing.T, method, path string, userID ulid.ULID, body any) *http.Request {
	t.Helper()
	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		assert.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(payload))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	ctx := context.WithValue(req.Context(), domain.UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestChatHandler_SendMessage(t *testing.T) {
	userID := ulid.Make()

	t.Run("message in a new chat", func(t *testing.T) {
		service := new(mockChatService)
		handler := NewChatHandler(service, zap.NewNop())

		chat := domain.NewChat(userID, "Hello")
		userMsg := domain.NewMessage(chat.ID, userID, domain.RoleUser, "Hello", "")
		reply := domain.NewMessage(chat.ID, userID, domain.RoleAssistant, "Hi!", "")
		service.On("SendMessage", mock.Anything, ulid.ULID{}, userID, "Hello", "").Return(chat, userMsg, reply, nil)

		req := authedRequest(t, http.MethodPost, "/api/chat/message", userID, map[string]string{"content": "Hello"})
		rec := httptest.NewRecorder()
		handler.SendMessageHandler(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]any
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Hi!", resp["reply"].(map[string]any)["content"])
	})

	t.Run("invalid chat id in body", func(t *testing.T) {
		service := new(mockChatService)
		handler := NewChatHandler(service, zap.NewNop())

		req := authedRequest(t, http.MethodPost, "/api/chat/message", userID, map[string]string{
			"chat_id": "not-a-ulid",
			"content": "Hello",
		})
		rec := httptest.NewRecorder()
		handler.SendMessageHandler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid image", func(t *testing.T) {
		service := new(mockChatService)
		handler := NewChatHandler(service, zap.NewNop())
		service.On("SendMessage", mock.Anything, ulid.ULID{}, userID, "look", "data:bad").Return(nil, nil, nil, domain.ErrInvalidImage)

		req := authedRequest(t, http.MethodPost, "/api/chat/message", userID, map[string]string{
			"content":    "look",
			"image_data": "data:bad",
		})
		rec := httptest.NewRecorder()
		handler.SendMessageHandler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing identity", func(t *testing.T) {
		service := new(mockChatService)
		handler := NewChatHandler(service, zap.NewNop())

		rec := postJSON(t, handler.SendMessageHandler, "/api/chat/message", map[string]string{"content": "Hello"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestChatHandler_GetChat(t *testing.T) {
	userID := ulid.Make()

	withURLParam := func(req *http.Request, key, value string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add(key, value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	t.Run("chat with history", func(t *testing.T) {
		service := new(mockChatService)
		handler := NewChatHandler(service, zap.NewNop())

		chat := domain.NewChat(userID, "History")
		messages := []*domain.Message{
			domain.NewMessage(chat.ID, userID, domain.RoleUser, "hi", ""),
			domain.NewMessage(chat.ID, userID, domain.RoleAssistant, "hello", ""),
		}
		service.On("GetChat", mock.Anything, chat.ID, userID).Return(chat, messages, nil)

		req := authedRequest(t, http.MethodGet, "/api/chats/"+chat.ID.String(), userID, nil)
		req = withURLParam(req, "id", chat.ID.String())
		rec := httptest.NewRecorder()
		handler.GetChatHandler(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Chat     map[string]any   `json:"chat"`
			Messages []map[string]any `json:"messages"`
		}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Messages, 2)
	})

	t.Run("unknown chat", func(t *testing.T) {
		service := new(mockChatService)
		handler := NewChatHandler(service, zap.NewNop())
		missing := ulid.Make()
		service.On("GetChat", mock.Anything, missing, userID).Return(nil, nil, domain.ErrChatNotFound)

		req := authedRequest(t, http.MethodGet, "/api/chats/"+missing.String(), userID, nil)
		req = withURLParam(req, "id", missing.String())
		rec := httptest.NewRecorder()
		handler.GetChatHandler(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed chat id", func(t *testing.T) {
		service := new(mockChatService)
		handler := NewChatHandler(service, zap.NewNop())

		req := authedRequest(t, http.MethodGet, "/api/chats/xyz", userID, nil)
		req = withURLParam(req, "id", "xyz")
		rec := httptest.NewRecorder()
		handler.GetChatHandler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestChatHandler_ListChats(t *testing.T) {
	userID := ulid.Make()
	service := new(mockChatService)
	handler := NewChatHandler(service, zap.NewNop())

	chats := []*domain.Chat{
		domain.NewChat(userID, "First"),
		domain.NewChat(userID, "Second"),
	}
	service.On("ListChats", mock.Anything, userID).Return(chats, nil)

	req := authedRequest(t, http.MethodGet, "/api/chats", userID, nil)
	rec := httptest.NewRecorder()
	handler.ListChatsHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp []map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}
