package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sonirghv/Gemini-backend/internal/domain"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrEmptyResponse is returned when the model produces no candidates
var ErrEmptyResponse = errors.New("empty response from model")

// Client talks to the Google Generative Language REST API
type Client struct {
	cfg    config.GeminiConfig
	http   *http.Client
	logger *zap.Logger
}

func NewClient(cfg config.GeminiConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

var safetyCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

// GenerateResponse sends the message, optional image and prior turns to the
// model and returns the reply text.
func (c *Client) GenerateResponse(ctx context.Context, message, imageData string, turns []domain.ChatTurn) (string, error) {
	reqBody := generateRequest{
		GenerationConfig: generationConfig{
			Temperature:     c.cfg.Temperature,
			TopP:            0.95,
			TopK:            64,
			MaxOutputTokens: c.cfg.MaxTokens,
		},
	}

	for _, turn := range turns {
		role := "user"
		if turn.Role == domain.RoleAssistant {
			role = "model"
		}
		reqBody.Contents = append(reqBody.Contents, content{
			Role:  role,
			Parts: []part{{Text: turn.Content}},
		})
	}

	current := content{Role: "user", Parts: []part{{Text: message}}}
	if imageData != "" {
		mime, data, ok := splitDataURL(imageData)
		if !ok {
			return "", domain.ErrInvalidImage
		}
		current.Parts = append(current.Parts, part{
			InlineData: &inlineData{MimeType: mime, Data: data},
		})
	}
	reqBody.Contents = append(reqBody.Contents, current)

	if c.cfg.SafetyEnabled {
		for _, category := range safetyCategories {
			reqBody.SafetySettings = append(reqBody.SafetySettings, safetySetting{
				Category:  category,
				Threshold: "BLOCK_MEDIUM_AND_ABOVE",
			})
		}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model, c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("model request failed", zap.Error(err))
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if result.Error != nil {
			msg = result.Error.Message
		}
		c.logger.Error("model returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg))
		return "", fmt.Errorf("model request failed: %s", msg)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	var reply strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		reply.WriteString(p.Text)
	}
	return reply.String(), nil
}

// ValidateImage checks that imageData is a base64 image data URL within the
// configured size limit.
func (c *Client) ValidateImage(imageData string) bool {
	_, data, ok := splitDataURL(imageData)
	if !ok {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return false
	}
	return int64(len(decoded)) <= c.cfg.MaxImageSize
}

// splitDataURL parses "data:image/<type>;base64,<data>".
func splitDataURL(imageData string) (mime, data string, ok bool) {
	if !strings.HasPrefix(imageData, "data:image/") {
		return "", "", false
	}
	header, data, found := strings.Cut(imageData, ",")
	if !found || data == "" {
		return "", "", false
	}
	header = strings.TrimPrefix(header, "data:")
	mime, _, found = strings.Cut(header, ";")
	if !found {
		return "", "", false
	}
	return mime, data, true
}
