package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/sonirghv/Gemini-backend/internal/domain"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/database"
	"go.uber.org/zap"
)

type FileUploadRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

func NewFileUploadRepository(db *database.Postgres, logger *zap.Logger) *FileUploadRepository {
	return &FileUploadRepository{
		db:     db,
		logger: logger,
	}
}

func (r *FileUploadRepository) Create(ctx context.Context, upload *domain.FileUpload) error {
	return r.db.Exec(ctx, `
		INSERT INTO file_uploads (id, filename, original_filename, file_path, file_size, content_type, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, upload.ID.String(), upload.Filename, upload.OriginalFilename, upload.FilePath,
		upload.FileSize, upload.ContentType, upload.UserID.String(), upload.CreatedAt)
}

func (r *FileUploadRepository) FindByID(ctx context.Context, id ulid.ULID) (*domain.FileUpload, error) {
	upload := &domain.FileUpload{}
	var uploadID, userID string
	err := r.db.QueryRow(ctx, `
		SELECT id, filename, original_filename, file_path, file_size, content_type, user_id, created_at
		FROM file_uploads
		WHERE id = $1
	`, id.String()).Scan(&uploadID, &upload.Filename, &upload.OriginalFilename, &upload.FilePath,
		&upload.FileSize, &upload.ContentType, &userID, &upload.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUploadNotFound
		}
		r.logger.Error("failed to scan file upload", zap.Error(err))
		return nil, domain.ErrInternal
	}
	if upload.ID, err = domain.ParseULID(uploadID); err != nil {
		return nil, err
	}
	if upload.UserID, err = domain.ParseULID(userID); err != nil {
		return nil, err
	}
	return upload, nil
}
