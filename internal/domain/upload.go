package domain

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// FileUpload tracks a file stored on disk for a user
type FileUpload struct {
	ID               ulid.ULID `json:"id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	FilePath         string    `json:"file_path"`
	FileSize         int64     `json:"file_size"`
	ContentType      string    `json:"content_type"`
	UserID           ulid.ULID `json:"user_id"`
	URL              string    `json:"url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// FileUploadRepository defines the interface for upload metadata access
type FileUploadRepository interface {
	Create(ctx context.Context, upload *FileUpload) error
	FindByID(ctx context.Context, id ulid.ULID) (*FileUpload, error)
}
