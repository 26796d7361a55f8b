package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/oklog/ulid/v2"
	"github.com/sonirghv/Gemini-backend/internal/application"
	"github.com/sonirghv/Gemini-backend/internal/domain"
	"go.uber.org/zap"
)

type UploadService interface {
	SaveFile(ctx context.Context, userID ulid.ULID, originalName, contentType string, size int64, content io.Reader) (*domain.FileUpload, error)
}

type UploadHandler struct {
	uploadService UploadService
	maxFileSize   int64
	logger        *zap.Logger
}

func NewUploadHandler(uploadService UploadService, maxFileSize int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		maxFileSize:   maxFileSize,
		logger:        logger,
	}
}

// UploadHandler accepts a multipart file under the "file" field
func (h *UploadHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+4096)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		http.Error(w, "File too large or malformed form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	upload, err := h.uploadService.SaveFile(r.Context(), userID, header.Filename,
		header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		if errors.Is(err, application.ErrFileTooLarge) {
			http.Error(w, "File exceeds the maximum allowed size", http.StatusRequestEntityTooLarge)
			return
		}
		h.logger.Error("failed to store upload", zap.Error(err))
		http.Error(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, upload)
}
