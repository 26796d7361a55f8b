package application

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sonirghv/Gemini-backend/internal/domain"
	"go.uber.org/zap"
)

// UploadService stores uploaded files on disk and tracks their metadata
type UploadService struct {
	uploads     domain.FileUploadRepository
	dir         string
	maxFileSize int64
	logger      *zap.Logger
}

func NewUploadService(uploads domain.FileUploadRepository, dir string, maxFileSize int64, logger *zap.Logger) *UploadService {
	return &UploadService{
		uploads:     uploads,
		dir:         dir,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// ErrFileTooLarge is returned when an upload exceeds the configured limit
var ErrFileTooLarge = fmt.Errorf("file exceeds the maximum allowed size")

// SaveFile streams the upload to disk under a generated name and records it
func (s *UploadService) SaveFile(ctx context.Context, userID ulid.ULID, originalName, contentType string, size int64, content io.Reader) (*domain.FileUpload, error) {
	if size > s.maxFileSize {
		return nil, ErrFileTooLarge
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.logger.Error("failed to create upload directory", zap.Error(err))
		return nil, domain.ErrInternal
	}

	id := ulid.Make()
	filename := strings.ToLower(id.String()) + filepath.Ext(originalName)
	path := filepath.Join(s.dir, filename)

	dst, err := os.Create(path)
	if err != nil {
		s.logger.Error("failed to create upload file", zap.Error(err))
		return nil, domain.ErrInternal
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(content, s.maxFileSize+1))
	if err != nil {
		os.Remove(path)
		s.logger.Error("failed to write upload", zap.Error(err))
		return nil, domain.ErrInternal
	}
	if written > s.maxFileSize {
		os.Remove(path)
		return nil, ErrFileTooLarge
	}

	upload := &domain.FileUpload{
		ID:               id,
		Filename:         filename,
		OriginalFilename: originalName,
		FilePath:         path,
		FileSize:         written,
		ContentType:      contentType,
		UserID:           userID,
		URL:              "/uploads/" + filename,
		CreatedAt:        time.Now(),
	}
	if err := s.uploads.Create(ctx, upload); err != nil {
		os.Remove(path)
		s.logger.Error("failed to record upload", zap.Error(err))
		return nil, domain.ErrInternal
	}
	return upload, nil
}

// GetFile returns upload metadata by id
func (s *UploadService) GetFile(ctx context.Context, id ulid.ULID) (*domain.FileUpload, error) {
	return s.uploads.FindByID(ctx, id)
}
