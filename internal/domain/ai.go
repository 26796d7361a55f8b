package domain

import "context"

// ChatTurn is one prior exchange passed to the model as conversation context
type ChatTurn struct {
	Role    string
	Content string
}

// ResponseGenerator is the AI backend port
type ResponseGenerator interface {
	// GenerateResponse produces a reply to message, optionally grounded on a
	// base64 data-URL image and prior conversation turns
	GenerateResponse(ctx context.Context, message, imageData string, turns []ChatTurn) (string, error)

	// ValidateImage checks a base64 data-URL image for format and size
	ValidateImage(imageData string) bool
}
