package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sonirghv/Gemini-backend/internal/domain"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testConfig(baseURL string) config.GeminiConfig {
	return config.GeminiConfig{
		APIKey:        "test-key",
		Model:         "gemini-1.5-flash",
		BaseURL:       baseURL,
		MaxTokens:     2048,
		Temperature:   0.7,
		SafetyEnabled: true,
		MaxImageSize:  1024,
	}
}

func candidateResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"parts": []map[string]any{{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	}
}

func TestClient_GenerateResponse(t *testing.T) {
	logger := zap.NewNop()

	t.Run("successful generation", func(t *testing.T) {
		var captured generateRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", r.URL.Path)
			assert.Equal(t, "test-key", r.URL.Query().Get("key"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			assert.NoError(t, json.NewEncoder(w).Encode(candidateResponse("Hello there")))
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL), logger)
		reply, err := client.GenerateResponse(context.Background(), "Hi", "", nil)

		assert.NoError(t, err)
		assert.Equal(t, "Hello there", reply)
		assert.Len(t, captured.Contents, 1)
		assert.Equal(t, "Hi", captured.Contents[0].Parts[0].Text)
		assert.Equal(t, 0.7, captured.GenerationConfig.Temperature)
		assert.Equal(t, 2048, captured.GenerationConfig.MaxOutputTokens)
		assert.Len(t, captured.SafetySettings, 4)
	})

	t.Run("prior turns mapped to model roles", func(t *testing.T) {
		var captured generateRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			assert.NoError(t, json.NewEncoder(w).Encode(candidateResponse("ok")))
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL), logger)
		turns := []domain.ChatTurn{
			{Role: domain.RoleUser, Content: "first"},
			{Role: domain.RoleAssistant, Content: "second"},
		}
		_, err := client.GenerateResponse(context.Background(), "third", "", turns)

		assert.NoError(t, err)
		assert.Len(t, captured.Contents, 3)
		assert.Equal(t, "user", captured.Contents[0].Role)
		assert.Equal(t, "model", captured.Contents[1].Role)
		assert.Equal(t, "third", captured.Contents[2].Parts[0].Text)
	})

	t.Run("image attached as inline data", func(t *testing.T) {
		var captured generateRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			assert.NoError(t, json.NewEncoder(w).Encode(candidateResponse("ok")))
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL), logger)
		encoded := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
		_, err := client.GenerateResponse(context.Background(), "describe", "data:image/png;base64,"+encoded, nil)

		assert.NoError(t, err)
		parts := captured.Contents[0].Parts
		assert.Len(t, parts, 2)
		assert.Equal(t, "image/png", parts[1].InlineData.MimeType)
		assert.Equal(t, encoded, parts[1].InlineData.Data)
	})

	t.Run("malformed image rejected before request", func(t *testing.T) {
		client := NewClient(testConfig("http://127.0.0.1:0"), logger)
		_, err := client.GenerateResponse(context.Background(), "describe", "not-a-data-url", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidImage)
	})

	t.Run("api error surfaced", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			assert.NoError(t, json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": 400, "message": "API key not valid"},
			}))
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL), logger)
		_, err := client.GenerateResponse(context.Background(), "Hi", "", nil)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "API key not valid")
	})

	t.Run("empty candidates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}}))
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL), logger)
		_, err := client.GenerateResponse(context.Background(), "Hi", "", nil)
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestClient_ValidateImage(t *testing.T) {
	client := NewClient(testConfig("http://localhost"), zap.NewNop())

	t.Run("valid image", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte("small"))
		assert.True(t, client.ValidateImage("data:image/jpeg;base64,"+encoded))
	})

	t.Run("wrong prefix", func(t *testing.T) {
		assert.False(t, client.ValidateImage("data:text/plain;base64,aGVsbG8="))
	})

	t.Run("invalid base64", func(t *testing.T) {
		assert.False(t, client.ValidateImage("data:image/png;base64,%%%%"))
	})

	t.Run("oversized image", func(t *testing.T) {
		big := base64.StdEncoding.EncodeToString(make([]byte, 2048))
		assert.False(t, client.ValidateImage("data:image/png;base64,"+big))
	})
}
